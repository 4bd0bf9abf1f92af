package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/workit/internal/models"
	"github.com/Windi-Fikriyansyah/workit/internal/realtime"
	"github.com/Windi-Fikriyansyah/workit/internal/storage"
)

type ApplicationHandler struct {
	Store    storage.Storage
	Uploads  Uploads
	Notifier *realtime.Notifier
}

type applicationWithUser struct {
	models.Application
	User *models.User `json:"user,omitempty"`
}

type applicationWithJob struct {
	models.Application
	Job *models.Job `json:"job"`
}

type StatusReq struct {
	Status string `json:"status"`
}

// ListForJob is only open to the job owner.
func (h *ApplicationHandler) ListForJob(c *fiber.Ctx) error {
	jobID, ok := paramID(c)
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid job id")
	}
	ctx := c.UserContext()
	job, err := h.Store.GetJob(ctx, jobID)
	if err != nil {
		return storageFail(c, err)
	}
	if job == nil {
		return fail(c, fiber.StatusNotFound, "Job not found")
	}
	if job.UserID != currentUser(c) {
		return fail(c, fiber.StatusForbidden, "You are not authorized to view these applications")
	}

	apps, err := h.Store.GetApplicationsForJob(ctx, jobID)
	if err != nil {
		return storageFail(c, err)
	}
	out := make([]applicationWithUser, 0, len(apps))
	for _, app := range apps {
		u, err := h.Store.GetUser(ctx, app.UserID)
		if err != nil {
			return storageFail(c, err)
		}
		out = append(out, applicationWithUser{Application: app, User: u})
	}
	return success(c, fiber.StatusOK, "", out)
}

func (h *ApplicationHandler) Create(c *fiber.Ctx) error {
	jobID, ok := paramID(c)
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid job id")
	}
	ctx := c.UserContext()
	uid := currentUser(c)

	job, err := h.Store.GetJob(ctx, jobID)
	if err != nil {
		return storageFail(c, err)
	}
	if job == nil {
		return fail(c, fiber.StatusNotFound, "Job not found")
	}
	if job.UserID == uid {
		return fail(c, fiber.StatusBadRequest, "You cannot apply to your own job")
	}

	var in models.InsertApplication
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid body")
	}
	in.JobID = jobID

	resume, err := h.Uploads.Save(c, "resumeFile", "resumes", resumeExts)
	if err != nil {
		return storageFail(c, err)
	}
	if resume != nil {
		in.ResumeFile = resume
	}

	app, err := h.Store.CreateApplication(ctx, uid, in)
	if err != nil {
		return storageFail(c, err)
	}
	h.Notifier.Notify(ctx, job.UserID, realtime.EventApplicationCreated, app)
	return success(c, fiber.StatusCreated, "Application submitted", app)
}

// UpdateStatus lets the job owner approve or reject an application.
func (h *ApplicationHandler) UpdateStatus(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid application id")
	}
	var req StatusReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid body")
	}
	status := models.ApplicationStatus(req.Status)
	if status != models.ApplicationApproved && status != models.ApplicationRejected {
		return fail(c, fiber.StatusBadRequest, "Invalid status")
	}

	ctx := c.UserContext()
	app, err := h.Store.GetApplication(ctx, id)
	if err != nil {
		return storageFail(c, err)
	}
	if app == nil {
		return fail(c, fiber.StatusNotFound, "Application not found")
	}
	job, err := h.Store.GetJob(ctx, app.JobID)
	if err != nil {
		return storageFail(c, err)
	}
	if job == nil {
		return fail(c, fiber.StatusNotFound, "Job not found")
	}
	if job.UserID != currentUser(c) {
		return fail(c, fiber.StatusForbidden, "You are not authorized to update this application")
	}

	updated, err := h.Store.UpdateApplicationStatus(ctx, id, status)
	if err != nil {
		return storageFail(c, err)
	}
	if updated == nil {
		return fail(c, fiber.StatusNotFound, "Application not found")
	}
	h.Notifier.Notify(ctx, updated.UserID, realtime.EventApplicationStatus, updated)
	return success(c, fiber.StatusOK, "Application updated", updated)
}

func (h *ApplicationHandler) ListByUser(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid user id")
	}
	if id != currentUser(c) {
		return fail(c, fiber.StatusForbidden, "You can only view your own applications")
	}

	ctx := c.UserContext()
	apps, err := h.Store.GetUserApplications(ctx, id)
	if err != nil {
		return storageFail(c, err)
	}
	out := make([]applicationWithJob, 0, len(apps))
	for _, app := range apps {
		job, err := h.Store.GetJob(ctx, app.JobID)
		if err != nil {
			return storageFail(c, err)
		}
		out = append(out, applicationWithJob{Application: app, Job: job})
	}
	return success(c, fiber.StatusOK, "", out)
}

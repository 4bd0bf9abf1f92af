package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/workit/internal/models"
	"github.com/Windi-Fikriyansyah/workit/internal/storage"
)

type JobHandler struct {
	Store   storage.Storage
	Uploads Uploads
}

type jobWithUser struct {
	models.Job
	User *models.User `json:"user,omitempty"`
}

func (h *JobHandler) List(c *fiber.Ctx) error {
	ctx := c.UserContext()
	jobs, err := h.Store.GetJobs(ctx, queryFilter(c, "category", "status", "jobType", "location"))
	if err != nil {
		return storageFail(c, err)
	}
	out := make([]jobWithUser, 0, len(jobs))
	for _, job := range jobs {
		u, err := h.Store.GetUser(ctx, job.UserID)
		if err != nil {
			return storageFail(c, err)
		}
		out = append(out, jobWithUser{Job: job, User: u})
	}
	return success(c, fiber.StatusOK, "", out)
}

func (h *JobHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid job id")
	}
	ctx := c.UserContext()
	job, err := h.Store.GetJob(ctx, id)
	if err != nil {
		return storageFail(c, err)
	}
	if job == nil {
		return fail(c, fiber.StatusNotFound, "Job not found")
	}
	u, err := h.Store.GetUser(ctx, job.UserID)
	if err != nil {
		return storageFail(c, err)
	}
	return success(c, fiber.StatusOK, "", jobWithUser{Job: *job, User: u})
}

func (h *JobHandler) Create(c *fiber.Ctx) error {
	var in models.InsertJob
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid body")
	}
	img, err := h.Uploads.Save(c, "image", "jobs", imageExts)
	if err != nil {
		return storageFail(c, err)
	}
	if img != nil {
		in.Image = img
	}

	job, err := h.Store.CreateJob(c.UserContext(), currentUser(c), in)
	if err != nil {
		return storageFail(c, err)
	}
	return success(c, fiber.StatusCreated, "Job created", job)
}

func (h *JobHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid job id")
	}
	ctx := c.UserContext()
	job, err := h.Store.GetJob(ctx, id)
	if err != nil {
		return storageFail(c, err)
	}
	if job == nil {
		return fail(c, fiber.StatusNotFound, "Job not found")
	}
	if job.UserID != currentUser(c) {
		return fail(c, fiber.StatusForbidden, "You can only update your own jobs")
	}

	var patch models.JobPatch
	if err := c.BodyParser(&patch); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid body")
	}
	img, err := h.Uploads.Save(c, "image", "jobs", imageExts)
	if err != nil {
		return storageFail(c, err)
	}
	if img != nil {
		patch.Image = img
	}

	updated, err := h.Store.UpdateJob(ctx, id, patch)
	if err != nil {
		return storageFail(c, err)
	}
	if updated == nil {
		return fail(c, fiber.StatusNotFound, "Job not found")
	}
	return success(c, fiber.StatusOK, "Job updated", updated)
}

func (h *JobHandler) ListByUser(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid user id")
	}
	jobs, err := h.Store.GetUserJobs(c.UserContext(), id)
	if err != nil {
		return storageFail(c, err)
	}
	return success(c, fiber.StatusOK, "", jobs)
}

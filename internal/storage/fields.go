package storage

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"

	"github.com/Windi-Fikriyansyah/workit/internal/models"
)

type fieldKind int

const (
	kindInt fieldKind = iota
	kindFloat
	kindString
)

// field describes one filterable attribute: its relational column and how
// to read it from a record. get returns nil for an unset optional field.
type field[T any] struct {
	column string
	kind   fieldKind
	get    func(*T) any
}

type registry[T any] map[string]field[T]

// condition is a validated filter entry with its value coerced to the
// field kind.
type condition struct {
	name   string
	column string
	value  any
}

// compile checks every filter key against the registry and coerces its
// value. The result is sorted by name so queries are deterministic.
func (r registry[T]) compile(f Filter) ([]condition, error) {
	conds := make([]condition, 0, len(f))
	for name, raw := range f {
		fd, ok := r[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFilter, name)
		}
		v, err := coerce(fd.kind, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: filter %q: %v", ErrValidation, name, err)
		}
		conds = append(conds, condition{name: name, column: fd.column, value: v})
	}
	sort.Slice(conds, func(i, j int) bool { return conds[i].name < conds[j].name })
	return conds, nil
}

func (r registry[T]) matches(rec *T, conds []condition) bool {
	for _, c := range conds {
		v := r[c.name].get(rec)
		if v == nil || v != c.value {
			return false
		}
	}
	return true
}

// columns maps a patch change set onto relational column names.
func (r registry[T]) columns(changes map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(changes))
	for name, v := range changes {
		fd, ok := r[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFilter, name)
		}
		out[fd.column] = v
	}
	return out, nil
}

func coerce(kind fieldKind, v any) (any, error) {
	switch kind {
	case kindInt:
		switch x := v.(type) {
		case int:
			return x, nil
		case int32:
			return int(x), nil
		case int64:
			return int(x), nil
		case float64:
			if x != math.Trunc(x) {
				return nil, fmt.Errorf("%v is not an integer", x)
			}
			return int(x), nil
		case string:
			n, err := strconv.Atoi(x)
			if err != nil {
				return nil, fmt.Errorf("%q is not an integer", x)
			}
			return n, nil
		}
	case kindFloat:
		switch x := v.(type) {
		case float64:
			return x, nil
		case float32:
			return float64(x), nil
		case int:
			return float64(x), nil
		case int64:
			return float64(x), nil
		case string:
			n, err := strconv.ParseFloat(x, 64)
			if err != nil {
				return nil, fmt.Errorf("%q is not a number", x)
			}
			return n, nil
		}
	case kindString:
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.String {
			return rv.String(), nil
		}
	}
	return nil, fmt.Errorf("unsupported value %v (%T)", v, v)
}

func optString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

var userFields = registry[models.User]{
	"id":             {column: "id", kind: kindInt, get: func(u *models.User) any { return u.ID }},
	"username":       {column: "username", kind: kindString, get: func(u *models.User) any { return u.Username }},
	"email":          {column: "email", kind: kindString, get: func(u *models.User) any { return u.Email }},
	"password":       {column: "password", kind: kindString, get: func(u *models.User) any { return u.Password }},
	"role":           {column: "role", kind: kindString, get: func(u *models.User) any { return string(u.Role) }},
	"bio":            {column: "bio", kind: kindString, get: func(u *models.User) any { return optString(u.Bio) }},
	"profilePicture": {column: "profile_picture", kind: kindString, get: func(u *models.User) any { return optString(u.ProfilePicture) }},
}

var serviceFields = registry[models.Service]{
	"id":           {column: "id", kind: kindInt, get: func(s *models.Service) any { return s.ID }},
	"userId":       {column: "user_id", kind: kindInt, get: func(s *models.Service) any { return s.UserID }},
	"title":        {column: "title", kind: kindString, get: func(s *models.Service) any { return s.Title }},
	"description":  {column: "description", kind: kindString, get: func(s *models.Service) any { return s.Description }},
	"price":        {column: "price", kind: kindFloat, get: func(s *models.Service) any { return s.Price }},
	"category":     {column: "category", kind: kindString, get: func(s *models.Service) any { return s.Category }},
	"status":       {column: "status", kind: kindString, get: func(s *models.Service) any { return string(s.Status) }},
	"image":        {column: "image", kind: kindString, get: func(s *models.Service) any { return optString(s.Image) }},
	"deliveryTime": {column: "delivery_time", kind: kindString, get: func(s *models.Service) any { return optString(s.DeliveryTime) }},
}

var jobFields = registry[models.Job]{
	"id":          {column: "id", kind: kindInt, get: func(j *models.Job) any { return j.ID }},
	"userId":      {column: "user_id", kind: kindInt, get: func(j *models.Job) any { return j.UserID }},
	"title":       {column: "title", kind: kindString, get: func(j *models.Job) any { return j.Title }},
	"description": {column: "description", kind: kindString, get: func(j *models.Job) any { return j.Description }},
	"budget":      {column: "budget", kind: kindFloat, get: func(j *models.Job) any { return j.Budget }},
	"category":    {column: "category", kind: kindString, get: func(j *models.Job) any { return j.Category }},
	"location":    {column: "location", kind: kindString, get: func(j *models.Job) any { return optString(j.Location) }},
	"jobType":     {column: "job_type", kind: kindString, get: func(j *models.Job) any { return j.JobType }},
	"status":      {column: "status", kind: kindString, get: func(j *models.Job) any { return string(j.Status) }},
	"image":       {column: "image", kind: kindString, get: func(j *models.Job) any { return optString(j.Image) }},
}

var applicationFields = registry[models.Application]{
	"id":     {column: "id", kind: kindInt, get: func(a *models.Application) any { return a.ID }},
	"jobId":  {column: "job_id", kind: kindInt, get: func(a *models.Application) any { return a.JobID }},
	"userId": {column: "user_id", kind: kindInt, get: func(a *models.Application) any { return a.UserID }},
	"status": {column: "status", kind: kindString, get: func(a *models.Application) any { return string(a.Status) }},
}

var orderFields = registry[models.Order]{
	"id":            {column: "id", kind: kindInt, get: func(o *models.Order) any { return o.ID }},
	"serviceId":     {column: "service_id", kind: kindInt, get: func(o *models.Order) any { return o.ServiceID }},
	"buyerId":       {column: "buyer_id", kind: kindInt, get: func(o *models.Order) any { return o.BuyerID }},
	"sellerId":      {column: "seller_id", kind: kindInt, get: func(o *models.Order) any { return o.SellerID }},
	"paymentMethod": {column: "payment_method", kind: kindString, get: func(o *models.Order) any { return string(o.PaymentMethod) }},
	"status":        {column: "status", kind: kindString, get: func(o *models.Order) any { return string(o.Status) }},
}

var reviewFields = registry[models.Review]{
	"id":        {column: "id", kind: kindInt, get: func(r *models.Review) any { return r.ID }},
	"serviceId": {column: "service_id", kind: kindInt, get: func(r *models.Review) any { return r.ServiceID }},
	"userId":    {column: "user_id", kind: kindInt, get: func(r *models.Review) any { return r.UserID }},
	"rating":    {column: "rating", kind: kindInt, get: func(r *models.Review) any { return r.Rating }},
}

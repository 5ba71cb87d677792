package task

import (
	"strings"

	"github.com/example/task-tracker/domain/apperr"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

// Category groups tasks by area of life.
type Category string

const (
	CategoryTechnology    Category = "TECHNOLOGY"
	CategoryCertification Category = "CERTIFICATION"
	CategoryWork          Category = "WORK"
	CategoryPersonal      Category = "PERSONAL"
	CategoryHealth        Category = "HEALTH"
	CategoryEducation     Category = "EDUCATION"
	CategoryOther         Category = "OTHER"
)

// Priority ranks tasks by urgency.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// Action names the mutation a history record describes.
type Action string

const (
	ActionCreated       Action = "created"
	ActionEdited        Action = "edited"
	ActionStatusChanged Action = "status-changed"
	ActionCompleted     Action = "completed"
	ActionDeleted       Action = "deleted"
)

// Statuses lists the accepted statuses in display order.
var Statuses = []Status{StatusInProgress, StatusDone}

// Categories lists the accepted categories in display order.
var Categories = []Category{
	CategoryTechnology, CategoryCertification, CategoryWork, CategoryPersonal,
	CategoryHealth, CategoryEducation, CategoryOther,
}

// Priorities lists the accepted priorities in display order.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// ParseStatus matches s case-insensitively against the known statuses.
func ParseStatus(s string) (Status, error) {
	v, ok := parseEnum(s, Statuses)
	if !ok {
		return "", apperr.Validation("Invalid status. Valid values are: %s", joinEnum(Statuses))
	}
	return v, nil
}

// ParseCategory matches s case-insensitively against the known categories.
func ParseCategory(s string) (Category, error) {
	v, ok := parseEnum(s, Categories)
	if !ok {
		return "", apperr.Validation("Invalid category. Valid values are: %s", joinEnum(Categories))
	}
	return v, nil
}

// ParsePriority matches s case-insensitively against the known priorities.
func ParsePriority(s string) (Priority, error) {
	v, ok := parseEnum(s, Priorities)
	if !ok {
		return "", apperr.Validation("Invalid priority. Valid values are: %s", joinEnum(Priorities))
	}
	return v, nil
}

func parseEnum[T ~string](s string, values []T) (T, bool) {
	s = strings.TrimSpace(s)
	for _, v := range values {
		if strings.EqualFold(s, string(v)) {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func joinEnum[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

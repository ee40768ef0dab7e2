package tasks

import (
	"strings"
	"unicode"

	"github.com/krancour/taskdash/sdk"
)

// DefaultVariant is the badge variant used for any status or priority that
// has no variant of its own.
const DefaultVariant = "default"

// avatarColors is the palette avatar colors are drawn from. Order matters:
// AvatarColor indexes into it.
var avatarColors = []string{
	"bg-red-500 text-white",
	"bg-blue-500 text-white",
	"bg-green-500 text-white",
	"bg-yellow-500 text-black",
	"bg-purple-500 text-white",
	"bg-pink-500 text-white",
	"bg-teal-500 text-white",
	"bg-orange-500 text-black",
	"bg-gray-500 text-white",
}

var statusVariants = map[sdk.TaskStatus]string{
	sdk.TaskStatusBacklog:    string(sdk.TaskStatusBacklog),
	sdk.TaskStatusTodo:       string(sdk.TaskStatusTodo),
	sdk.TaskStatusInProgress: string(sdk.TaskStatusInProgress),
	sdk.TaskStatusInReview:   string(sdk.TaskStatusInReview),
	sdk.TaskStatusDone:       string(sdk.TaskStatusDone),
}

var priorityVariants = map[sdk.TaskPriority]string{
	sdk.TaskPriorityLow:    string(sdk.TaskPriorityLow),
	sdk.TaskPriorityMedium: string(sdk.TaskPriorityMedium),
	sdk.TaskPriorityHigh:   string(sdk.TaskPriorityHigh),
}

// Initials returns the upper-cased first letters of the first two words of
// name. An empty or blank name yields the empty string.
func Initials(name string) string {
	words := strings.Fields(name)
	if len(words) > 2 {
		words = words[:2]
	}
	var sb strings.Builder
	for _, word := range words {
		for _, r := range word {
			sb.WriteRune(unicode.ToUpper(r))
			break
		}
	}
	return sb.String()
}

// AvatarColor deterministically maps name to one of a fixed set of color
// classes by summing its code points.
func AvatarColor(name string) string {
	var sum int
	for _, r := range name {
		sum += int(r)
	}
	return avatarColors[sum%len(avatarColors)]
}

// TransformStatus turns an enum-style value such as IN_PROGRESS into a label
// such as "In Progress".
func TransformStatus(status string) string {
	words := strings.Fields(strings.ReplaceAll(status, "_", " "))
	for i, word := range words {
		runes := []rune(strings.ToLower(word))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// StatusVariant returns the badge variant for status.
func StatusVariant(status sdk.TaskStatus) string {
	if variant, ok := statusVariants[status]; ok {
		return variant
	}
	return DefaultVariant
}

// PriorityVariant returns the badge variant for priority.
func PriorityVariant(priority sdk.TaskPriority) string {
	if variant, ok := priorityVariants[priority]; ok {
		return variant
	}
	return DefaultVariant
}

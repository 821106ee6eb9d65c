// views.go provides pure derived-view helpers over post collections.
// These back UI badges and list filters; they take an explicit slice and
// never touch storage, so consumers can run them over any snapshot.
package lifecycle

import "inkpress/internal/models"

// StatusFilterAll is the filter value that matches every status.
const StatusFilterAll = "all"

// CountByStatus returns the number of posts in each status, plus an "all"
// key with the total. Every status appears in the result, including ones
// with zero posts. Recomputed from scratch on every call.
func CountByStatus(posts []models.Post) map[string]int {
	counts := make(map[string]int, len(models.AllStatuses)+1)
	for _, s := range models.AllStatuses {
		counts[string(s)] = 0
	}
	counts[StatusFilterAll] = len(posts)

	for _, p := range posts {
		counts[string(p.Status)]++
	}
	return counts
}

// FilterByStatus returns the posts whose status matches the filter,
// preserving input order. The "all" filter returns the full slice.
func FilterByStatus(posts []models.Post, status string) []models.Post {
	if status == StatusFilterAll {
		return posts
	}

	filtered := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if string(p.Status) == status {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// IsEditable reports whether a post in the given status may be edited
// directly in the author's form flow. Rejected posts are shown read-only
// with a resubmit action, deleted posts live in the trash, and approved
// posts must be pulled out of public view before editing.
func IsEditable(status models.PostStatus) bool {
	switch status {
	case models.StatusRejected, models.StatusDeleted, models.StatusApproved:
		return false
	}
	return true
}

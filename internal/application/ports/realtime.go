package ports

import "github.com/taskstream/taskstream/internal/domain"

// Broadcaster pushes dispatched domain events to live sessions. Room pushes
// reach every connection joined to the project's room; user pushes reach
// every connection of that user, or no-op when none is live. There is no
// backlog: sessions joining later never see earlier pushes.
type Broadcaster interface {
	SendTaskAdded(projectID domain.ProjectID, taskID string, update any)
	SendTaskUpdate(projectID domain.ProjectID, taskID string, update any)
	SendTaskDelete(projectID domain.ProjectID, taskID string, update any)
	SendProjectAssigned(projectID domain.ProjectID, userID domain.UserID)
}

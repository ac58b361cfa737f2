package activity

// ListActivityOptions provides filtering options for listing activity.
type ListActivityOptions struct {
	SessionID    string
	ProjectID    *int64
	ActivityType *ActivityType
	Limit        int
	Offset       int
}

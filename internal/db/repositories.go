package db

// Repositories provides access to all database repositories
type Repositories struct {
	ScheduleItems *ScheduleItemRepository
	Slides        *SlideRepository
	Presentation  *PresentationStateRepository
	QueueItems    *QueueItemRepository
	MediaFiles    *MediaFileRepository
}

// NewRepositories creates a new repository collection
func NewRepositories(db *DB) *Repositories {
	return &Repositories{
		ScheduleItems: NewScheduleItemRepository(db),
		Slides:        NewSlideRepository(db),
		Presentation:  NewPresentationStateRepository(db),
		QueueItems:    NewQueueItemRepository(db),
		MediaFiles:    NewMediaFileRepository(db),
	}
}

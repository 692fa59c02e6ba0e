package roomy

import "context"

type ActivityRegistry interface {
	// AddActivity registers a name.
	// If it is already registered, it returns Error with status: ErrorStatusAlreadyExists.
	AddActivity(ctx context.Context, name string) error

	// RemoveActivity unregisters a name.
	// If it is not registered, it returns Error with status: ErrorStatusNotFound.
	RemoveActivity(ctx context.Context, name string) error

	Exists(ctx context.Context, name string) (bool, error)

	ListActivities(ctx context.Context) ([]string, error)
}

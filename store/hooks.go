package store

import "context"

// Models opt into lifecycle callbacks by implementing these interfaces.
// A Before hook returning an error aborts the write.
type (
	BeforeCreator interface{ BeforeCreate(context.Context) error }
	AfterCreator  interface{ AfterCreate(context.Context) error }
	BeforeUpdater interface{ BeforeUpdate(context.Context) error }
	AfterUpdater  interface{ AfterUpdate(context.Context) error }
)

func triggerBeforeCreate(ctx context.Context, model any) error {
	if m, ok := model.(BeforeCreator); ok {
		return m.BeforeCreate(ctx)
	}
	return nil
}

func triggerAfterCreate(ctx context.Context, model any) error {
	if m, ok := model.(AfterCreator); ok {
		return m.AfterCreate(ctx)
	}
	return nil
}

func triggerBeforeUpdate(ctx context.Context, model any) error {
	if m, ok := model.(BeforeUpdater); ok {
		return m.BeforeUpdate(ctx)
	}
	return nil
}

func triggerAfterUpdate(ctx context.Context, model any) error {
	if m, ok := model.(AfterUpdater); ok {
		return m.AfterUpdate(ctx)
	}
	return nil
}

package platform

import (
	"errors"
	"fmt"

	"fyne.io/fyne/v2"
)

// ErrNoApp indicates a notifier without an application to deliver through.
var ErrNoApp = errors.New("no application for notifications")

// Notifier posts desktop notifications.
type Notifier interface {
	Notify(title, body string) error
}

// Shell controls the secondary (projection) surface.
type Shell interface {
	OpenSecondarySurface() error
	CloseSecondarySurface() error
}

// AppNotifier delivers notifications through a Fyne application.
type AppNotifier struct {
	App fyne.App
}

func (notifier AppNotifier) Notify(title, body string) error {
	if notifier.App == nil {
		return ErrNoApp
	}
	notifier.App.SendNotification(fyne.NewNotification(title, body))
	return nil
}

// CompletionNotice returns the notification shown when a slot finishes.
func CompletionNotice(slotTitle string) (string, string) {
	return "Timer Completed", fmt.Sprintf(`"%s" has finished!`, slotTitle)
}

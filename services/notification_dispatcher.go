package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/vayungodara/lockin-sub000/internal/notification"
)

type PushNotificationProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error
}

// NotificationDispatcher fans persisted notifications out to push devices
// on a small worker pool so emitters never block on FCM.
type NotificationDispatcher struct {
	service      *NotificationService
	pushProvider PushNotificationProvider
	workers      int
	jobQueue     chan *notification.Notification
	stopChan     chan struct{}
	wg           sync.WaitGroup
}

func NewNotificationDispatcher(service *NotificationService) *NotificationDispatcher {
	dispatcher := &NotificationDispatcher{
		service:  service,
		workers:  3,
		jobQueue: make(chan *notification.Notification, 100),
		stopChan: make(chan struct{}),
	}

	dispatcher.startWorkers()

	return dispatcher
}

func (d *NotificationDispatcher) SetPushProvider(provider PushNotificationProvider) {
	d.pushProvider = provider
}

func (d *NotificationDispatcher) startWorkers() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
}

func (d *NotificationDispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case notif := <-d.jobQueue:
			d.processJob(notif)
		case <-d.stopChan:
			return
		}
	}
}

func (d *NotificationDispatcher) processJob(notif *notification.Notification) {
	if d.pushProvider == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tokens, err := d.service.getDeviceTokens(ctx, notif.UserID)
	if err != nil {
		log.Printf("dispatcher: failed to load tokens for user %s: %v", notif.UserID, err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	if err := d.pushProvider.SendPush(ctx, tokens, notif.Title, notif.Body, notif.Data); err != nil {
		log.Printf("dispatcher: push failed for user %s: %v", notif.UserID, err)
	}
}

// DispatchNotification queues the notification, dropping it if the queue
// stays full; the in-app row already exists so nothing is lost.
func (d *NotificationDispatcher) DispatchNotification(notif *notification.Notification) {
	select {
	case d.jobQueue <- notif:
	case <-time.After(5 * time.Second):
		log.Printf("dispatcher: queue full, dropping push for notification %s", notif.ID)
	}
}

// Stop shuts the worker pool down and waits for in-flight pushes.
func (d *NotificationDispatcher) Stop() {
	close(d.stopChan)
	d.wg.Wait()
}

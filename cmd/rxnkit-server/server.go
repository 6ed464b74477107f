package main

import (
	"github.com/rxnkit/rxnkit/internal/rxn"
	"github.com/rxnkit/rxnkit/internal/rxn/notifiers"
)

// Server represents the HTTP server for rxnkit
type Server struct {
	manager *rxn.SessionManager
	notify  *rxn.NotificationManager
	stream  *notifiers.WebSocketNotifier
	logger  *Logger
}

// NewServer creates a new server instance. The websocket stream notifier is
// always registered; clients attach to it through the /ws endpoint.
func NewServer(logger *Logger) *Server {
	notify := rxn.NewNotificationManagerWithLogger(logger)
	stream := notifiers.NewWebSocketNotifier("stream")
	if err := notify.RegisterNotifier(stream); err != nil {
		logger.Fatalf("registering stream notifier: %v", err)
	}
	return &Server{
		manager: rxn.NewSessionManagerWithLogger(logger),
		notify:  notify,
		stream:  stream,
		logger:  logger,
	}
}

// AddWebhook registers a webhook notifier for run events.
func (s *Server) AddWebhook(id, url string) error {
	return s.notify.RegisterNotifier(notifiers.NewWebhookNotifier(id, url))
}

// Close shuts down notification delivery and disconnects stream clients.
func (s *Server) Close() error {
	return s.notify.Close()
}

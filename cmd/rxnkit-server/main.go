package main

import (
	"net/http"

	"github.com/rxnkit/rxnkit/internal/rxn"
)

func main() {
	cfg := loadServerConfig()
	logger := NewLogger(cfg.LogLevel)

	srv := NewServer(logger)
	defer srv.Close()

	if cfg.WebhookURL != "" {
		if err := srv.AddWebhook("webhook", cfg.WebhookURL); err != nil {
			logger.Fatalf("registering webhook: %v", err)
		}
		logger.Infof("Webhook notifier registered: url=%s", cfg.WebhookURL)
	}

	if cfg.ModelFile != "" {
		mcfg, model, err := loadInitialModelFromFile(cfg.ModelFile, logger)
		if err != nil {
			logger.Fatalf("loading initial model from %s: %v", cfg.ModelFile, err)
		}
		model.SetNotificationManager(srv.notify)
		if err := srv.manager.CreateSession(rxn.SessionID(cfg.DefaultSess), model); err != nil {
			logger.Fatalf("creating default session: %v", err)
		}
		logger.Infof("Initial model loaded: session_id=%s model=%s", cfg.DefaultSess, mcfg.Name)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", srv.handleHealth)
	mux.HandleFunc("/sessions", srv.handleSessions)
	mux.HandleFunc("/session/", srv.handleSession)
	mux.Handle("/ws", srv.stream)

	logger.Infof("rxnkit-server listening on %s", cfg.Addr)
	logger.Fatalf("%v", http.ListenAndServe(cfg.Addr, mux))
}

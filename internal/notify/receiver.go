// Package notify receives push deliveries on a local HTTP endpoint and shows
// them as desktop notifications.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/naveenspark/docduty/pkg/domain"
)

// Displayer shows a notification to the user.
type Displayer interface {
	Display(n domain.PushNotification) error
}

// Opener opens a URL.
type Opener func(url string) error

// Receiver handles push, message and click events.
type Receiver struct {
	display Displayer
	open    Opener
	appURL  string
	log     logrus.FieldLogger
}

// NewReceiver creates a receiver that opens appURL on notification clicks.
func NewReceiver(d Displayer, open Opener, appURL string, log logrus.FieldLogger) *Receiver {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Receiver{display: d, open: open, appURL: appURL, log: log.WithField("component", "notify")}
}

// Router returns the receiver's routes.
func (rc *Receiver) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	r.HandleFunc("/push", rc.handlePush).Methods(http.MethodPost)
	r.HandleFunc("/message", rc.handleMessage).Methods(http.MethodPost)
	r.HandleFunc("/click", rc.handleClick).Methods(http.MethodPost)
	return r
}

func (rc *Receiver) handlePush(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 64<<10))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable body"})
		return
	}
	n := domain.ParsePushPayload(body).Notification()
	if err := rc.display.Display(n); err != nil {
		rc.log.WithError(err).Warn("display push notification")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	rc.log.WithField("title", n.Title).Info("push notification shown")
	writeJSON(w, http.StatusOK, map[string]any{"shown": 1})
}

func (rc *Receiver) handleMessage(w http.ResponseWriter, r *http.Request) {
	var msg domain.RemoteMessage
	if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&msg); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid message"})
		return
	}
	shown := 0
	for _, n := range msg.Notifications() {
		if err := rc.display.Display(n); err != nil {
			rc.log.WithError(err).Warn("display message notification")
			continue
		}
		shown++
	}
	writeJSON(w, http.StatusOK, map[string]any{"shown": shown})
}

func (rc *Receiver) handleClick(w http.ResponseWriter, r *http.Request) {
	action := r.URL.Query().Get("action")
	if action != "" && action != "view" {
		writeJSON(w, http.StatusOK, map[string]any{"opened": false})
		return
	}
	if err := rc.open(rc.appURL); err != nil {
		rc.log.WithError(err).Warn("open app url")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"opened": true})
}

// Serve runs the receiver on addr until ctx is cancelled.
func (rc *Receiver) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return rc.ServeListener(ctx, ln)
}

// ServeListener runs the receiver on ln until ctx is cancelled.
func (rc *Receiver) ServeListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           rc.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	rc.log.WithField("addr", ln.Addr().String()).Info("notification receiver listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort write
}

package forbidden

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/mux"

	"github.com/fitplate/dashboard"
	"github.com/fitplate/dashboard/internal/guard"
	"github.com/fitplate/dashboard/internal/session"
	"github.com/fitplate/dashboard/internal/sse"
)

// Tick is streamed to the forbidden view once per countdown step. Navigate is set only
// on the final event.
type Tick struct {
	Remaining int    `json:"remaining"`
	Navigate  string `json:"navigate,omitempty"`
}

// View describes the forbidden view to JSON clients
type View struct {
	From        string `json:"from,omitempty"`
	Destination string `json:"destination"`
	Countdown   int    `json:"countdown"`
}

type Server struct {
	start    int
	interval time.Duration
	logger   *slog.Logger
}

func NewServer(start int, interval time.Duration, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		start:    start,
		interval: interval,
		logger:   logger,
	}
}

func (s *Server) RegisterRoutes(r *mux.Router) {
	r.Path(dashboard.ForbiddenPath).Methods("GET").HandlerFunc(s.handleView)
	r.Path(dashboard.ForbiddenPath + "/countdown").Methods("GET").HandlerFunc(s.handleCountdown)
}

func (s *Server) handleView(res http.ResponseWriter, req *http.Request) {
	view := s.resolveView(req)
	if guard.WantsJSON(req) {
		res.Header().Set("content-type", "application/json")
		json.NewEncoder(res).Encode(view)
		return
	}

	res.Header().Set("content-type", "text/html; charset=utf-8")
	res.WriteHeader(http.StatusForbidden)
	data := viewData{
		View:         view,
		CountdownURL: withFrom(dashboard.ForbiddenPath+"/countdown", view.From),
	}
	if err := viewTemplate.Execute(res, data); err != nil {
		s.logger.Error("failed to render forbidden view", "error", err)
	}
}

func (s *Server) handleCountdown(res http.ResponseWriter, req *http.Request) {
	view := s.resolveView(req)
	stream, err := sse.Open(res, req)
	if err != nil {
		return
	}

	c := NewCountdown(s.start, s.interval, func(remaining int) {
		if err := stream.Send(Tick{Remaining: remaining}); err != nil {
			s.logger.Warn("failed to send countdown tick", "error", err)
		}
	}, func() {
		if err := stream.Send(Tick{Navigate: view.Destination}); err != nil {
			s.logger.Warn("failed to send countdown navigation", "error", err)
		}
	})
	c.Run(req.Context())
}

func (s *Server) resolveView(req *http.Request) View {
	from := req.URL.Query().Get("from")
	if !guard.SafePath(from) {
		from = ""
	}
	var sess session.Session
	if p := session.FromContext(req.Context()); p != nil {
		sess = p.Session()
	}
	return View{
		From:        from,
		Destination: Destination(sess, from),
		Countdown:   s.start,
	}
}

type viewData struct {
	View
	CountdownURL string
}

func withFrom(base string, from string) string {
	if from == "" {
		return base
	}
	return base + "?" + url.Values{"from": {from}}.Encode()
}

var viewTemplate = template.Must(template.New("forbidden").Parse(`<!DOCTYPE html>
<html>
<head><title>Access denied</title></head>
<body>
<h1>Access denied</h1>
{{if .From}}<p>You don't have access to <code>{{.From}}</code>.</p>{{end}}
<p>Redirecting in <span id="remaining">{{.Countdown}}</span> seconds.</p>
<p><a id="go" href="{{.Destination}}">Go now</a></p>
<script>
const source = new EventSource({{.CountdownURL}});
source.onmessage = (e) => {
  const tick = JSON.parse(e.data);
  if (tick.navigate) {
    source.close();
    window.location.assign(tick.navigate);
    return;
  }
  document.getElementById("remaining").textContent = tick.remaining;
};
</script>
</body>
</html>
`))

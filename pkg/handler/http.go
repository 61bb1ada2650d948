package handler

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/claudehenchoz/trinket/pkg/metrics"
	"github.com/claudehenchoz/trinket/pkg/store"
	"github.com/claudehenchoz/trinket/requests"
	"github.com/claudehenchoz/trinket/responses"
	httputils "github.com/foomo/keel/utils/net/http"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type (
	HTTP struct {
		l     *zap.Logger
		path  string
		store *store.Store
	}
	HTTPOption func(*HTTP)
)

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

// NewHTTP returns the daemon's http surface around the given store
func NewHTTP(l *zap.Logger, store *store.Store, opts ...HTTPOption) http.Handler {
	inst := &HTTP{
		l:     l.Named("http"),
		path:  "/trinket",
		store: store,
	}

	for _, opt := range opts {
		opt(inst)
	}

	return inst
}

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

func WithPath(v string) HTTPOption {
	return func(o *HTTP) {
		o.path = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

func (h *HTTP) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputils.ServerError(h.l, w, r, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}
	if r.Body == nil {
		httputils.BadRequestServerError(h.l, w, r, errors.New("empty request body"))
		return
	}

	bytes, err := io.ReadAll(r.Body)
	if err != nil {
		httputils.BadRequestServerError(h.l, w, r, errors.Wrap(err, "failed to read incoming request"))
		return
	}

	route := Route(strings.TrimPrefix(r.URL.Path, h.path+"/"))

	reply, errReply := h.handleRequest(r, route, bytes, "webserver")
	if errReply != nil {
		http.Error(w, errReply.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(reply)
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (h *HTTP) handleRequest(r *http.Request, route Route, jsonBytes []byte, source string) ([]byte, error) {
	start := time.Now()

	reply, err := h.executeRequest(r, route, jsonBytes)
	result := "success"
	if err != nil {
		result = "error"
	}

	metrics.ServiceRequestCounter.WithLabelValues(string(route), result, source).Inc()
	metrics.ServiceRequestDuration.WithLabelValues(string(route), result, source).Observe(time.Since(start).Seconds())

	return reply, err
}

func (h *HTTP) executeRequest(r *http.Request, route Route, jsonBytes []byte) (replyBytes []byte, err error) {
	var (
		reply             interface{}
		apiErr            error
		jsonErr           error
		processIfJSONIsOk = func(err error, processingFunc func()) {
			if err != nil {
				jsonErr = err
				return
			}
			processingFunc()
		}
	)

	// handle and process
	switch route {
	case RouteSave:
		saveRequest := &requests.Save{}
		processIfJSONIsOk(json.Unmarshal(jsonBytes, &saveRequest), func() {
			snip, saveErr := h.store.Save(r.Context(), saveRequest.Content)
			if saveErr != nil {
				apiErr = saveErr
				return
			}
			reply = &responses.Save{Snippet: snip}
		})
	case RouteQuery:
		queryRequest := &requests.Query{}
		processIfJSONIsOk(json.Unmarshal(jsonBytes, &queryRequest), func() {
			results := h.store.Query(queryRequest.Pattern)
			reply = &responses.Query{
				Total:   len(results),
				Results: results,
			}
		})
	case RouteReload:
		reloadRequest := &requests.Reload{}
		processIfJSONIsOk(json.Unmarshal(jsonBytes, &reloadRequest), func() {
			reply = h.reload(r)
		})
	default:
		reply = responses.NewError(1, "unknown handler: "+string(route))
	}

	// error handling
	if jsonErr != nil {
		h.l.Error("could not read incoming json", zap.Error(jsonErr))
		reply = responses.NewError(2, "could not read incoming json "+jsonErr.Error())
	} else if apiErr != nil {
		h.l.Error("an API error occurred", zap.Error(apiErr))
		reply = responses.NewError(3, "internal error "+apiErr.Error())
	}

	return h.encodeReply(reply)
}

func (h *HTTP) reload(r *http.Request) *responses.Reload {
	start := time.Now()
	reply := &responses.Reload{}
	if err := h.store.Reload(r.Context()); err != nil {
		reply.Success = false
		reply.ErrorMessage = err.Error()
		reply.Stats.NumberOfSnippets = -1
	} else {
		reply.Success = true
		reply.Stats.NumberOfSnippets = h.store.Size()
	}
	reply.Stats.Runtime = time.Since(start).Seconds()
	return reply
}

// encodeReply takes an interface and encodes it as JSON
// it returns the resulting JSON and a marshalling error
func (h *HTTP) encodeReply(reply interface{}) (bytes []byte, err error) {
	bytes, err = json.Marshal(reply)
	if err != nil {
		h.l.Error("could not encode reply", zap.Error(err))
	}
	return
}

package fake

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/slok/jobwatch/internal/log"
	"github.com/slok/jobwatch/internal/model"
)

type taskResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// NewHandler returns an HTTP handler that serves the backend job API on top of the fake backend.
func NewHandler(b *Backend, logger log.Logger) http.Handler {
	if logger == nil {
		logger = log.Noop
	}
	logger = logger.WithValues(log.Kv{"svc": "backend.FakeHTTP"})

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	for _, op := range model.Operations() {
		spec, err := model.SpecFor(op)
		if err != nil {
			continue
		}
		router.POST(spec.Path, submitHandler(b, op, logger))
	}
	router.GET("/task/:id", taskHandler(b))

	return router
}

func submitHandler(b *Backend, op model.Operation, logger log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body model.Body
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request body",
				"details": err.Error(),
			})
			return
		}

		sub, err := b.Submit(c.Request.Context(), op, body)
		if err != nil {
			logger.Warningf("Rejected %s request: %s", op, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if !sub.Deferred() {
			c.Data(http.StatusOK, "application/json", sub.Immediate)
			return
		}

		c.JSON(http.StatusOK, gin.H{"taskID": sub.TaskID})
	}
}

func taskHandler(b *Backend) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, err := b.GetTask(c.Request.Context(), c.Param("id"))
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, model.ErrNotFound) {
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		resp := taskResponse{
			ID:     t.ID,
			Status: string(t.Status),
			Error:  t.Error,
		}
		if len(t.Result) > 0 {
			resp.Result = t.Result
		}
		c.JSON(http.StatusOK, resp)
	}
}

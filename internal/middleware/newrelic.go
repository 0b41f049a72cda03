package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// TransactionAttributes tags the New Relic transaction started by nrgin
// with the worker and job the request is about. Requests without a
// transaction pass through untouched.
func TransactionAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		txn := newrelic.FromContext(c.Request.Context())
		if txn == nil {
			c.Next()
			return
		}

		if id := c.Param("id"); id != "" {
			txn.AddAttribute("worker.id", id)
		}
		if number := c.Param("number"); number != "" {
			txn.AddAttribute("job.number", number)
		}

		c.Next()

		for _, err := range c.Errors {
			txn.NoticeError(err.Err)
		}
	}
}

package handlers

import (
	"encoding/csv"

	"github.com/gin-gonic/gin"
)

// writeCSV streams header and rows as a CSV attachment. Date values must
// already be rendered YYYY-MM-DD by the caller.
func (a *API) writeCSV(c *gin.Context, filename string, header []string, rows [][]string) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	w := csv.NewWriter(c.Writer)
	if err := w.Write(header); err != nil {
		a.log.WithError(err).Error("csv export failed")
		return
	}
	if err := w.WriteAll(rows); err != nil {
		a.log.WithError(err).Error("csv export failed")
	}
}

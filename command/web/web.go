package web

import (
	"bytes"
	"errors"
	"flag"
	"net/http"
	"os"
	"strconv"

	"github.com/labstack/echo/v4"
	lo "github.com/samber/lo"

	"issue-report/connectors/config"
	ccsv "issue-report/connectors/csv"
	"issue-report/domain/issues"
	"issue-report/domain/stats"
	"issue-report/renderers/htmlreport"
)

// Run starts a small Echo web server exposing the normalized table as JSON and
// the HTML report rendered from its current contents.
//
// Usage:
//
//	issue-report web [-addr :8080] [-data issues-clean.csv]
//
// Endpoints:
//
//	GET /api/records[?row_type=issue|comment] -> normalized rows
//	GET /api/snapshot[?recent=10]             -> aggregate statistics
//	GET /                                     -> HTML report
func Run(args []string) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	addr := fs.String("addr", cfg.Web.Addr, "http listen address (host:port)")
	data := fs.String("data", cfg.Paths.Clean, "normalized table to serve")
	if err := fs.Parse(args); err != nil {
		return err
	}

	opts := htmlreport.Options{Title: cfg.Report.Title, TopLabels: cfg.Report.TopLabels, TopUsers: cfg.Report.TopUsers}
	e := newServer(*data, cfg.Report.HTMLRecent, opts)
	return e.Start(*addr)
}

func newServer(dataPath string, defaultRecent int, opts htmlreport.Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	recentParam := func(c echo.Context) (int, error) {
		v := c.QueryParam("recent")
		if v == "" {
			return defaultRecent, nil
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return 0, echo.NewHTTPError(http.StatusBadRequest, "recent must be a non-negative integer")
		}
		return n, nil
	}

	e.GET("/api/records", func(c echo.Context) error {
		// The table is read per request so the server reflects the latest clean run.
		records, err := ccsv.ReadNormalized(dataPath)
		if err != nil {
			return tableError(c, dataPath, err)
		}
		if rt := c.QueryParam("row_type"); rt != "" {
			records = lo.Filter(records, func(r issues.Record, _ int) bool { return r.RowType == rt })
		}
		return c.JSON(http.StatusOK, records)
	})

	e.GET("/api/snapshot", func(c echo.Context) error {
		recent, err := recentParam(c)
		if err != nil {
			return err
		}
		records, err := ccsv.ReadNormalized(dataPath)
		if err != nil {
			return tableError(c, dataPath, err)
		}
		return c.JSON(http.StatusOK, stats.Compute(records, recent))
	})

	e.GET("/", func(c echo.Context) error {
		recent, err := recentParam(c)
		if err != nil {
			return err
		}
		records, err := ccsv.ReadNormalized(dataPath)
		if err != nil {
			return tableError(c, dataPath, err)
		}
		var buf bytes.Buffer
		if err := htmlreport.Write(&buf, stats.Compute(records, recent), opts); err != nil {
			return err
		}
		return c.HTMLBlob(http.StatusOK, buf.Bytes())
	})

	return e
}

func tableError(c echo.Context, path string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return c.JSON(http.StatusNotFound, map[string]any{
			"error":   "file not found",
			"path":    path,
			"message": "normalized table is missing",
		})
	}
	return c.JSON(http.StatusInternalServerError, map[string]any{
		"error":   err.Error(),
		"path":    path,
		"message": "failed to read normalized table",
	})
}

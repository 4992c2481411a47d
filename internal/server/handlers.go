package server

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"postwatch/internal/service"
	"postwatch/internal/similarity"
	"postwatch/internal/upstream"
)

func (s *Server) handlePosts(c *fiber.Ctx) error {
	q := service.SliceQuery{
		Offset: c.QueryInt("offset", 0),
		Limit:  c.QueryInt("limit", 10),
		Cache:  c.QueryBool("cache", true),
	}
	if raw := c.Query("userId"); raw != "" {
		owner := c.QueryInt("userId")
		q.OwnerID = &owner
	}

	result, err := s.svc.Slice(c.UserContext(), q)
	if err != nil {
		return s.queryError(c, err)
	}

	c.Set(fiber.HeaderCacheControl, fmt.Sprintf("public, max-age=%d", int(s.svc.TTL().Seconds())))
	return c.JSON(result)
}

func (s *Server) handleAnomalies(c *fiber.Ctx) error {
	q := service.AnomalyQuery{
		MinTitleLength:      c.QueryInt("min_title_len", 15),
		Method:              similarity.Method(c.Query("method", "fuzzy")),
		SimilarThreshold:    c.QueryFloat("similar_threshold", 0.4),
		SuspiciousThreshold: c.QueryInt("suspicious_threshold", 5),
		ScanCap:             c.QueryInt("max_scan", s.cfg.ScanMax),
		Cache:               c.QueryBool("cache", true),
	}

	result, err := s.svc.Anomalies(c.UserContext(), q)
	if err != nil {
		return s.queryError(c, err)
	}
	return c.JSON(result)
}

func (s *Server) handleSummary(c *fiber.Ctx) error {
	q := service.SummaryQuery{
		TopN:          c.QueryInt("top_n_users", 3),
		DropStopwords: c.QueryBool("drop_stopwords", true),
		ScanCap:       c.QueryInt("max_scan", s.cfg.ScanMax),
		Cache:         c.QueryBool("cache", true),
	}

	result, err := s.svc.Summary(c.UserContext(), q)
	if err != nil {
		return s.queryError(c, err)
	}
	return c.JSON(result)
}

func (s *Server) handleHealthz(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleStats(c *fiber.Ctx) error {
	return c.JSON(s.collector.Snapshot())
}

// queryError maps pipeline errors to HTTP statuses: bad parameters to 400,
// exhausted-upstream timeouts to 504, other upstream failures to 502.
func (s *Server) queryError(c *fiber.Ctx, err error) error {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": verr.Error()})
	case errors.Is(err, upstream.ErrTimeout):
		return c.Status(fiber.StatusGatewayTimeout).JSON(fiber.Map{"error": "Upstream timeout"})
	case errors.Is(err, upstream.ErrUpstream):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": fmt.Sprintf("Upstream error: %v", err)})
	default:
		s.logger.Error("unhandled query error", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal error"})
	}
}

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/helios-hq/meridian/pkg/audit"
	"github.com/helios-hq/meridian/pkg/rules"
	"github.com/helios-hq/meridian/pkg/rules/engine"
)

// maxRequestBodySize caps request bodies. Rule definitions are small, so
// anything near this limit is malformed or hostile.
const maxRequestBodySize = 1 << 20

// readJSON decodes a JSON request body into dst, enforcing the body size
// limit. An empty body is reported as io.EOF so callers can treat it as
// "no payload" where that is meaningful.
func readJSON(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}
	if len(body) >= maxRequestBodySize {
		return fmt.Errorf("request body exceeds maximum size of %d bytes", maxRequestBodySize)
	}
	if len(body) == 0 {
		return io.EOF
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

type listRulesResponse struct {
	Rules []*rules.Rule `json:"rules"`
	Count int           `json:"count"`
}

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	list := s.deps.Rules.List()
	writeJSON(w, http.StatusOK, listRulesResponse{Rules: list, Count: len(list)})
}

func (s *Server) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	var spec rules.CreateRule
	if err := readJSON(r, &spec); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rule, err := s.deps.Rules.Add(spec)
	if err != nil {
		var valErr *rules.ValidationError
		if errors.As(err, &valErr) {
			writeErrorDetails(w, http.StatusBadRequest, "rule validation failed", valErr.Errors)
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.logger.Info("rule created", "rule_id", rule.ID, "name", rule.Name, "campaign_id", rule.CampaignID)
	writeJSON(w, http.StatusCreated, rule)
}

func (s *Server) handleGetRule(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	rule, ok := s.deps.Rules.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("rule %s not found", id))
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

func (s *Server) handleUpdateRule(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var upd rules.UpdateRule
	if err := readJSON(r, &upd); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rule, err := s.deps.Rules.Update(id, upd)
	if err != nil {
		if errors.Is(err, rules.ErrRuleNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("rule %s not found", id))
			return
		}
		var valErr *rules.ValidationError
		if errors.As(err, &valErr) {
			writeErrorDetails(w, http.StatusBadRequest, "rule validation failed", valErr.Errors)
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.logger.Info("rule updated", "rule_id", rule.ID, "name", rule.Name)
	writeJSON(w, http.StatusOK, rule)
}

func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if !s.deps.Rules.Delete(id) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("rule %s not found", id))
		return
	}

	s.logger.Info("rule deleted", "rule_id", id)
	w.WriteHeader(http.StatusNoContent)
}

type evaluateRequest struct {
	CampaignIDs []string `json:"campaignIds"`
}

type evaluateResponse struct {
	*engine.PassSummary
	Campaigns []*engine.CampaignSummary `json:"campaigns,omitempty"`
}

// handleEvaluate runs an evaluation pass immediately. Without a body (or
// with an empty campaignIds list) it evaluates every campaign referenced
// by an active rule; otherwise only the named campaigns. Campaign
// failures are reported in the summary, not as an HTTP error.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := readJSON(r, &req); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()

	if len(req.CampaignIDs) == 0 {
		summary, err := s.deps.Engine.ProcessAllCampaigns(ctx)
		if err != nil {
			s.logger.Warn("evaluation pass finished with failures", "error", err)
		}
		writeJSON(w, http.StatusOK, evaluateResponse{PassSummary: summary})
		return
	}

	start := time.Now()
	summary := &engine.PassSummary{StartedAt: start}
	resp := evaluateResponse{PassSummary: summary}

	for _, campaignID := range req.CampaignIDs {
		cs, err := s.deps.Engine.ProcessCampaign(ctx, campaignID)
		if err != nil {
			summary.CampaignsFailed++
			summary.Errors = append(summary.Errors, err.Error())
			s.logger.Warn("campaign evaluation failed", "campaign_id", campaignID, "error", err)
			continue
		}
		summary.CampaignsProcessed++
		summary.RulesEvaluated += cs.RulesEvaluated
		summary.RulesTriggered += cs.RulesTriggered
		resp.Campaigns = append(resp.Campaigns, cs)
	}
	summary.Duration = time.Since(start)

	writeJSON(w, http.StatusOK, resp)
}

type listLogsResponse struct {
	Logs  []*audit.LogEntry `json:"logs"`
	Count int               `json:"count"`
}

func (s *Server) handleListLogs(w http.ResponseWriter, r *http.Request) {
	q := audit.Query{
		CampaignID: r.URL.Query().Get("campaignId"),
		RuleID:     r.URL.Query().Get("ruleId"),
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", raw))
			return
		}
		q.Limit = limit
	}

	if raw := r.URL.Query().Get("triggered"); raw != "" {
		triggered, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid triggered %q", raw))
			return
		}
		q.Triggered = &triggered
	}

	entries := s.deps.Logs.Query(q)
	writeJSON(w, http.StatusOK, listLogsResponse{Logs: entries, Count: len(entries)})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Engine.Stats())
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	})
}

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"marketlens/internal/analysis/hedge"
	"marketlens/internal/analysis/portfolio"
	"marketlens/internal/dashboard"
	"marketlens/internal/logger"
	"marketlens/internal/market"
	"marketlens/internal/render"
)

// backtestTimeout bounds a single backtest job run.
const backtestTimeout = 5 * time.Minute

func errorStatus(err error) int {
	if errors.Is(err, market.ErrNoData) {
		return http.StatusNotFound
	}
	if errors.Is(err, portfolio.ErrBadAllocation) {
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}

func errStrings(failures map[string]error) map[string]string {
	if len(failures) == 0 {
		return nil
	}
	out := make(map[string]string, len(failures))
	for k, v := range failures {
		out[k] = v.Error()
	}
	return out
}

func (s *Server) analyzeFromQuery(c *gin.Context) (*dashboard.Analysis, bool) {
	symbol := c.Query("symbol")
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol required"})
		return nil, false
	}
	rng, err := s.rangeParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	a, err := s.dash.Analyze(c.Request.Context(), symbol, rng, s.clock())
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return nil, false
	}
	return a, true
}

func (s *Server) handleAnalysis(c *gin.Context) {
	res, ok := s.analyzeFromQuery(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"analysis": res})
}

func (s *Server) handleMomentum(c *gin.Context) {
	res, ok := s.analyzeFromQuery(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"symbol":     res.Symbol,
		"momentum":   res.Momentum,
		"oscillator": res.Oscillator,
	})
}

func (s *Server) handleDivergences(c *gin.Context) {
	res, ok := s.analyzeFromQuery(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"symbol":         res.Symbol,
		"bullish":        res.Bullish,
		"bearish":        res.Bearish,
		"recent_bullish": res.RecentBullish,
		"recent_bearish": res.RecentBearish,
	})
}

func (s *Server) handleProfile(c *gin.Context) {
	res, ok := s.analyzeFromQuery(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"symbol":  res.Symbol,
		"profile": res.Profile,
		"levels":  res.Levels,
	})
}

func (s *Server) handleNarrative(c *gin.Context) {
	res, ok := s.analyzeFromQuery(c)
	if !ok {
		return
	}
	text := s.dash.Narrate(c.Request.Context(), res)
	c.JSON(http.StatusOK, gin.H{"symbol": res.Symbol, "narrative": text})
}

func (s *Server) handleChart(c *gin.Context) {
	res, ok := s.analyzeFromQuery(c)
	if !ok {
		return
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := render.SymbolPage(res).Render(c.Writer); err != nil {
		logger.Errorf("render chart %s: %v", res.Symbol, err)
	}
}

type watchlistRequest struct {
	Symbols []string `json:"symbols" binding:"required"`
	Range   string   `json:"range"`
}

func (s *Server) handleWatchlist(c *gin.Context) {
	var req watchlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rng, err := market.ParseRange(req.Range)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	wl, err := s.dash.AnalyzeMany(c.Request.Context(), req.Symbols, rng, s.clock())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"analyses": wl.Analyses, "failures": errStrings(wl.Failures)})
}

func (s *Server) handleHedgeUniverse(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"assets": hedge.Universe()})
}

type hedgeRankRequest struct {
	Ticker string `json:"ticker" binding:"required"`
	Range  string `json:"range"`
	// Sector and Beta feed the written analysis block; both optional.
	Sector  string   `json:"sector"`
	Beta    float64  `json:"beta"`
	Symbols []string `json:"symbols"`
	Top     int      `json:"top"`
}

func (s *Server) handleHedgeRank(c *gin.Context) {
	var req hedgeRankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rng, err := market.ParseRange(req.Range)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Beta == 0 {
		req.Beta = 1
	}
	ranking, err := hedge.RankHedges(c.Request.Context(), s.src, req.Ticker, rng, s.clock(), req.Symbols)
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}
	resp := gin.H{
		"ticker":     ranking.Ticker,
		"candidates": ranking.Candidates,
		"failures":   errStrings(ranking.Failures),
		"analysis":   hedge.FallbackAnalysis(ranking.Ticker, req.Sector, req.Beta, ranking.TopHedges(3)),
	}
	if req.Top > 0 {
		resp["top"] = ranking.TopHedges(req.Top)
	}
	c.JSON(http.StatusOK, resp)
}

type hedgeSimulateRequest struct {
	Ticker        string  `json:"ticker" binding:"required"`
	HedgeSymbol   string  `json:"hedge_symbol" binding:"required"`
	AllocationPct float64 `json:"allocation_pct"`
	Range         string  `json:"range"`
}

func (s *Server) handleHedgeSimulate(c *gin.Context) {
	var req hedgeSimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rng, err := market.ParseRange(req.Range)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sim, err := hedge.Analyze(c.Request.Context(), s.src, req.Ticker, req.HedgeSymbol, req.AllocationPct, rng, s.clock())
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"simulation": sim})
}

func (s *Server) handleTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"templates":     portfolio.Templates(),
		"risk_profiles": portfolio.RiskProfiles(),
		"horizons":      portfolio.Horizons(),
	})
}

type generateRequest struct {
	RiskProfile string  `json:"risk_profile"`
	Horizon     string  `json:"horizon"`
	Amount      float64 `json:"amount"`
	Template    string  `json:"template"`
}

func (s *Server) handleGenerate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Template != "" {
		tpl, ok := portfolio.TemplateByName(req.Template)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown template " + req.Template})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"template":    tpl,
			"allocations": tpl.Allocations.WithAmounts(req.Amount),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"portfolio":            portfolio.GenerateCustom(req.RiskProfile, req.Horizon, req.Amount),
		"recommended_template": portfolio.FallbackRecommendation(req.RiskProfile),
	})
}

type metricsRequest struct {
	Allocations []portfolio.Allocation `json:"allocations" binding:"required"`
	Benchmark   string                 `json:"benchmark"`
	Range       string                 `json:"range"`
}

func (s *Server) handleMetrics(c *gin.Context) {
	var req metricsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rng, err := market.ParseRange(req.Range)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	benchmark := req.Benchmark
	if benchmark == "" {
		benchmark = s.benchmark
	}
	m, err := portfolio.ComputeMetrics(c.Request.Context(), s.src, req.Allocations, benchmark, rng, s.clock())
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"metrics": m})
}

type optimizeRequest struct {
	Symbols       []string `json:"symbols" binding:"required"`
	TargetReturn  float64  `json:"target_return"`
	MaxVolatility float64  `json:"max_volatility"`
	Trials        int      `json:"trials"`
	Seed          int64    `json:"seed"`
}

func (s *Server) handleOptimize(c *gin.Context) {
	var req optimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	opt := portfolio.OptimizeOptions{
		TargetReturn:  req.TargetReturn,
		MaxVolatility: req.MaxVolatility,
		Trials:        req.Trials,
		Seed:          req.Seed,
	}
	res, err := portfolio.Optimize(c.Request.Context(), s.src, req.Symbols, opt, s.clock())
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"portfolio": res})
}

func (s *Server) handleBacktestSubmit(c *gin.Context) {
	var params BacktestParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := portfolio.Allocations(params.Allocations).Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if params.Years < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "years must be at least 1"})
		return
	}

	job := s.jobs.submit(params)
	go s.runBacktest(job.ID, params)
	c.JSON(http.StatusAccepted, gin.H{"job": job})
}

func (s *Server) runBacktest(id string, params BacktestParams) {
	s.jobs.setRunning(id)
	ctx, cancel := context.WithTimeout(context.Background(), backtestTimeout)
	defer cancel()
	result, err := portfolio.Backtest(ctx, s.src, portfolio.Allocations(params.Allocations), params.Years, s.clock())
	if err != nil {
		logger.Warnf("backtest job %s: %v", id, err)
	}
	s.jobs.finish(id, result, err)
}

func (s *Server) handleBacktestStatus(c *gin.Context) {
	job, ok := s.jobs.snapshot(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown job"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"job": job})
}

func (s *Server) handleJobs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"jobs": s.jobs.snapshots()})
}

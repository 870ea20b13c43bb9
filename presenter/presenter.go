package presenter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"

	"github.com/pelagos-finance/defi-indexer/analytics"
	"github.com/pelagos-finance/defi-indexer/logging"
	"github.com/pelagos-finance/defi-indexer/monitor"
	hm "github.com/pelagos-finance/defi-indexer/presenter/http/middleware"
	"github.com/pelagos-finance/defi-indexer/presenter/http/render"
	"github.com/pelagos-finance/defi-indexer/repository"
	"github.com/pelagos-finance/defi-indexer/verification"
)

// Presenter is the read-side HTTP API over the indexed state, plus the task
// verification endpoint.
type Presenter struct {
	logger       logging.Logger
	repo         *repository.Repo
	verification *verification.Service
	root         chi.Router
}

func NewPresenter(logger logging.Logger, repo *repository.Repo, verificationSvc *verification.Service) *Presenter {
	p := &Presenter{
		logger:       logger,
		repo:         repo,
		verification: verificationSvc,
		root:         chi.NewMux(),
	}
	p.root.Use(middleware.Throttle(10))
	p.root.Use(middleware.RequestID)
	p.root.Use(hm.NewLoggerMiddleware(p.logger))
	p.root.Use(hm.Recoverer)
	p.root.Get("/status", p.GetStatus)
	p.root.Group(func(r chi.Router) {
		r.Use(hm.GetAddressMiddleware)
		r.Get("/positions/{address:0x[0-9a-fA-F]{40}}", p.GetPositions)
		r.Get("/vault/{address:0x[0-9a-fA-F]{40}}", p.GetVault)
		r.Get("/locks/{address:0x[0-9a-fA-F]{40}}", p.GetLocks)
		r.Post("/verify/{address:0x[0-9a-fA-F]{40}}", p.VerifyTask)
	})
	return p
}

func (p *Presenter) Serve(addr string) error {
	p.logger.WithField("addr", addr).Info("starting presenter service")
	return http.ListenAndServe(addr, p.root)
}

func (p *Presenter) Handler() http.Handler {
	return p.root
}

func (p *Presenter) GetStatus(w http.ResponseWriter, r *http.Request) {
	cursors, err := p.repo.ScanCursors.FindAll(r.Context())
	if err != nil {
		render.Error(w, r, fmt.Errorf("can't get scan cursors: %w", err))
		return
	}
	res := &StatusResult{Cursors: make([]*CursorStatus, len(cursors))}
	for i, cursor := range cursors {
		res.Cursors[i] = &CursorStatus{
			Contract:  cursor.Contract,
			Address:   cursor.Address,
			LastBlock: cursor.LastBlock,
			Syncing:   cursor.Syncing,
		}
	}
	render.JSON(w, r, http.StatusOK, res)
}

func (p *Presenter) GetPositions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := hm.Address(ctx)
	positions, err := p.repo.LiquidityPositions.FindByUser(ctx, user)
	if err != nil {
		render.Error(w, r, fmt.Errorf("can't get liquidity positions: %w", err))
		return
	}
	res := &PositionsResult{User: user, Positions: make([]*LiquidityPositionInfo, len(positions))}
	for i, pos := range positions {
		res.Positions[i] = liquidityPositionToInfo(pos)
	}
	render.JSON(w, r, http.StatusOK, res)
}

func (p *Presenter) GetVault(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := hm.Address(ctx)
	positions, err := p.repo.CollateralPositions.FindByUser(ctx, user)
	if err != nil {
		render.Error(w, r, fmt.Errorf("can't get collateral positions: %w", err))
		return
	}
	res := &VaultResult{User: user, Positions: make([]*CollateralPositionInfo, len(positions))}
	if len(positions) > 0 {
		res.DebtUSD = positions[0].DebtUSD
		res.HealthFactor = analytics.AggregateHealthFactor(positions)
	}
	for i, pos := range positions {
		res.Positions[i] = collateralPositionToInfo(pos)
	}
	render.JSON(w, r, http.StatusOK, res)
}

// GetLocks reports voting escrow locks with voting power recomputed at read
// time, so that the decay is continuous rather than stepped by scan interval.
func (p *Presenter) GetLocks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner := hm.Address(ctx)
	locks, err := p.repo.VeNFTLocks.FindByOwner(ctx, owner)
	if err != nil {
		render.Error(w, r, fmt.Errorf("can't get venft locks: %w", err))
		return
	}
	now := time.Now()
	res := &LocksResult{Owner: owner, TotalVotingPower: decimal.Zero, Locks: make([]*LockInfo, len(locks))}
	for i, lock := range locks {
		info := lockToInfo(lock)
		info.VotingPower, info.IsExpired = monitor.VotingPower(lock.LockedAmount, lock.LockEnd, now)
		res.TotalVotingPower = res.TotalVotingPower.Add(info.VotingPower)
		res.Locks[i] = info
	}
	render.JSON(w, r, http.StatusOK, res)
}

func (p *Presenter) VerifyTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := hm.Address(ctx)
	task := new(verification.Task)
	if err := json.NewDecoder(r.Body).Decode(task); err != nil {
		render.BadRequest(w, r, fmt.Errorf("can't decode task: %w", err))
		return
	}
	if task.ID == "" || task.Type == "" {
		render.BadRequest(w, r, fmt.Errorf("task id and type are required"))
		return
	}
	outcome, err := p.verification.VerifyTask(ctx, user, task)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, r, http.StatusOK, outcome)
}

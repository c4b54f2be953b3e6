package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/agoralive/agora/types"
)

// Options configures the relational store.
type Options struct {
	// Driver selects the backend: sqlite, postgres, or mysql.
	Driver string

	// DSN is the driver-specific connection string.
	DSN string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// GormStore implements Store on top of GORM with a pluggable dialector.
type GormStore struct {
	db       *gorm.DB
	notifier Notifier
	logger   *zap.Logger
}

// --- models ---------------------------------------------------------------

type debateModel struct {
	ID          string             `gorm:"primaryKey;size:36"`
	Topic       string             `gorm:"size:512;not null"`
	Description string             `gorm:"type:text"`
	Status      string             `gorm:"size:32;index;not null"`
	Config      types.DebateConfig `gorm:"serializer:json"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (debateModel) TableName() string { return "debates" }

type participantModel struct {
	ID       string `gorm:"primaryKey;size:36"`
	DebateID string `gorm:"size:36;index;not null"`
	Role     string `gorm:"size:32;not null"`
	Name     string `gorm:"size:255;not null"`
	Persona  string `gorm:"type:text"`
	VoiceID  string `gorm:"size:64"`
}

func (participantModel) TableName() string { return "participants" }

type turnModel struct {
	ID            string                `gorm:"primaryKey;size:36"`
	DebateID      string                `gorm:"size:36;uniqueIndex:uq_turns_debate_number"`
	Number        int                   `gorm:"uniqueIndex:uq_turns_debate_number"`
	ParticipantID string                `gorm:"size:36;index"`
	Type          string                `gorm:"size:16"`
	Argument      string                `gorm:"type:text"`
	Citations     []types.Citation      `gorm:"serializer:json"`
	Sources       []types.SourceSnippet `gorm:"serializer:json"`
	AudioURL      string                `gorm:"size:1024"`
	CreatedAt     time.Time
}

func (turnModel) TableName() string { return "turns" }

type verdictModel struct {
	ID            string   `gorm:"primaryKey;size:36"`
	DebateID      string   `gorm:"size:36;index"`
	TurnID        string   `gorm:"size:36;index"`
	ParticipantID string   `gorm:"size:36"`
	Claim         string   `gorm:"type:text"`
	Verdict       string   `gorm:"size:32"`
	Explanation   string   `gorm:"type:text"`
	Confidence    float64
	Lie           bool     `gorm:"index"`
	Sources       []string `gorm:"serializer:json"`
	CreatedAt     time.Time
}

func (verdictModel) TableName() string { return "claim_verdicts" }

type alertModel struct {
	ID              string `gorm:"primaryKey;size:36"`
	DebateID        string `gorm:"size:36;index"`
	VerdictID       string `gorm:"size:36"`
	ParticipantName string `gorm:"size:255"`
	Claim           string `gorm:"type:text"`
	Explanation     string `gorm:"type:text"`
	Severity        string `gorm:"size:16"`
	CreatedAt       time.Time
}

func (alertModel) TableName() string { return "alerts" }

type summaryModel struct {
	ID              string                     `gorm:"primaryKey;size:36"`
	DebateID        string                     `gorm:"size:36;uniqueIndex"`
	Overall         string                     `gorm:"type:text"`
	WinnerAnalysis  string                     `gorm:"type:text"`
	AccuracyScores  map[string]float64         `gorm:"serializer:json"`
	KeyArguments    []string                   `gorm:"serializer:json"`
	VerdictCounts   map[types.VerdictLabel]int `gorm:"serializer:json"`
	Sources         []types.RankedSource       `gorm:"serializer:json"`
	Recommendations []string                   `gorm:"serializer:json"`
	Votes           types.VoteTally            `gorm:"serializer:json"`
	CreatedAt       time.Time
}

func (summaryModel) TableName() string { return "summaries" }

type voteModel struct {
	DebateID string `gorm:"primaryKey;size:36"`
	ProVotes int
	ConVotes int
}

func (voteModel) TableName() string { return "votes" }

type documentModel struct {
	ID        string `gorm:"primaryKey;size:36"`
	DebateID  string `gorm:"size:36;index"`
	Side      string `gorm:"size:16"`
	Title     string `gorm:"size:512"`
	URL       string `gorm:"size:1024"`
	Content   string `gorm:"type:text"`
	CreatedAt time.Time
}

func (documentModel) TableName() string { return "documents" }

// --- construction ---------------------------------------------------------

// Open connects to the configured backend, tunes the connection pool,
// and migrates the schema.
func Open(opts Options, notifier Notifier, logger *zap.Logger) (*GormStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = NewMemoryNotifier(logger)
	}

	var dialector gorm.Dialector
	switch opts.Driver {
	case "sqlite", "":
		dialector = sqlite.Open(opts.DSN)
	case "postgres":
		dialector = postgres.Open(opts.DSN)
	case "mysql":
		dialector = mysql.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", opts.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if err := db.AutoMigrate(
		&debateModel{},
		&participantModel{},
		&turnModel{},
		&verdictModel{},
		&alertModel{},
		&summaryModel{},
		&voteModel{},
		&documentModel{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &GormStore{
		db:       db,
		notifier: notifier,
		logger:   logger.With(zap.String("component", "store")),
	}, nil
}

// Notifier implements Store.
func (s *GormStore) Notifier() Notifier { return s.notifier }

// Close implements Store.
func (s *GormStore) Close() error {
	if err := s.notifier.Close(); err != nil {
		s.logger.Warn("failed to close notifier", zap.Error(err))
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// publish emits a change event; failures are logged, never escalated,
// because consumers can always reconcile by reading the store.
func (s *GormStore) publish(ctx context.Context, table Table, action, debateID, recordID string) {
	ev := Event{Table: table, Action: action, DebateID: debateID, RecordID: recordID, At: time.Now()}
	if err := s.notifier.Publish(ctx, ev); err != nil {
		s.logger.Warn("failed to publish change event",
			zap.String("table", string(table)),
			zap.String("debate_id", debateID),
			zap.Error(err),
		)
	}
}

// --- debates --------------------------------------------------------------

// CreateDebate implements DebateStore.
func (s *GormStore) CreateDebate(ctx context.Context, d *types.Debate) error {
	now := time.Now()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now
	m := debateModel{
		ID:          d.ID,
		Topic:       d.Topic,
		Description: d.Description,
		Status:      string(d.Status),
		Config:      d.Config,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("create debate: %w", err)
	}
	s.publish(ctx, TableDebates, "insert", d.ID, d.ID)
	return nil
}

// GetDebate implements DebateStore.
func (s *GormStore) GetDebate(ctx context.Context, id string) (*types.Debate, error) {
	var m debateModel
	if err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get debate: %w", err)
	}
	return &types.Debate{
		ID:          m.ID,
		Topic:       m.Topic,
		Description: m.Description,
		Status:      types.Status(m.Status),
		Config:      m.Config,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}, nil
}

// UpdateDebateStatus implements DebateStore.
func (s *GormStore) UpdateDebateStatus(ctx context.Context, id string, status types.Status) error {
	res := s.db.WithContext(ctx).Model(&debateModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": string(status), "updated_at": time.Now()})
	if res.Error != nil {
		return fmt.Errorf("update debate status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.publish(ctx, TableDebates, "update", id, id)
	return nil
}

// UpdateDebateDescription implements DebateStore.
func (s *GormStore) UpdateDebateDescription(ctx context.Context, id, description string) error {
	res := s.db.WithContext(ctx).Model(&debateModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"description": description, "updated_at": time.Now()})
	if res.Error != nil {
		return fmt.Errorf("update debate description: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.publish(ctx, TableDebates, "update", id, id)
	return nil
}

// CreateParticipant implements DebateStore.
func (s *GormStore) CreateParticipant(ctx context.Context, p *types.Participant) error {
	m := participantModel{
		ID:       p.ID,
		DebateID: p.DebateID,
		Role:     string(p.Role),
		Name:     p.Name,
		Persona:  p.Persona,
		VoiceID:  p.VoiceID,
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("create participant: %w", err)
	}
	return nil
}

// ListParticipants implements DebateStore.
func (s *GormStore) ListParticipants(ctx context.Context, debateID string) ([]*types.Participant, error) {
	var ms []participantModel
	if err := s.db.WithContext(ctx).Where("debate_id = ?", debateID).Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	out := make([]*types.Participant, 0, len(ms))
	for _, m := range ms {
		out = append(out, &types.Participant{
			ID:       m.ID,
			DebateID: m.DebateID,
			Role:     types.Role(m.Role),
			Name:     m.Name,
			Persona:  m.Persona,
			VoiceID:  m.VoiceID,
		})
	}
	return out, nil
}

// --- turns ----------------------------------------------------------------

// CreateTurn implements TurnStore. The write is idempotent on the
// (debate, number) natural key: a duplicate insert is a no-op.
func (s *GormStore) CreateTurn(ctx context.Context, t *types.Turn) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	m := turnModel{
		ID:            t.ID,
		DebateID:      t.DebateID,
		Number:        t.Number,
		ParticipantID: t.ParticipantID,
		Type:          string(t.Type),
		Argument:      t.Argument,
		Citations:     t.Citations,
		Sources:       t.Sources,
		AudioURL:      t.AudioURL,
		CreatedAt:     t.CreatedAt,
	}
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "debate_id"}, {Name: "number"}},
			DoNothing: true,
		}).
		Create(&m)
	if res.Error != nil {
		return fmt.Errorf("create turn: %w", res.Error)
	}
	s.publish(ctx, TableTurns, "insert", t.DebateID, t.ID)
	return nil
}

// ListTurns implements TurnStore, ordered by turn number.
func (s *GormStore) ListTurns(ctx context.Context, debateID string) ([]*types.Turn, error) {
	var ms []turnModel
	if err := s.db.WithContext(ctx).
		Where("debate_id = ?", debateID).
		Order("number asc").
		Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	out := make([]*types.Turn, 0, len(ms))
	for _, m := range ms {
		out = append(out, &types.Turn{
			ID:            m.ID,
			DebateID:      m.DebateID,
			ParticipantID: m.ParticipantID,
			Number:        m.Number,
			Type:          types.TurnType(m.Type),
			Argument:      m.Argument,
			Citations:     m.Citations,
			Sources:       m.Sources,
			AudioURL:      m.AudioURL,
			CreatedAt:     m.CreatedAt,
		})
	}
	return out, nil
}

// --- verdicts and alerts --------------------------------------------------

// CreateVerdict implements VerdictStore.
func (s *GormStore) CreateVerdict(ctx context.Context, v *types.ClaimVerdict) error {
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	m := verdictModel{
		ID:            v.ID,
		DebateID:      v.DebateID,
		TurnID:        v.TurnID,
		ParticipantID: v.ParticipantID,
		Claim:         v.Claim,
		Verdict:       string(v.Verdict),
		Explanation:   v.Explanation,
		Confidence:    v.Confidence,
		Lie:           v.Lie,
		Sources:       v.Sources,
		CreatedAt:     v.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("create verdict: %w", err)
	}
	s.publish(ctx, TableVerdicts, "insert", v.DebateID, v.ID)
	return nil
}

// ListVerdicts implements VerdictStore.
func (s *GormStore) ListVerdicts(ctx context.Context, debateID string) ([]*types.ClaimVerdict, error) {
	var ms []verdictModel
	if err := s.db.WithContext(ctx).
		Where("debate_id = ?", debateID).
		Order("created_at asc").
		Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("list verdicts: %w", err)
	}
	out := make([]*types.ClaimVerdict, 0, len(ms))
	for _, m := range ms {
		out = append(out, &types.ClaimVerdict{
			ID:            m.ID,
			DebateID:      m.DebateID,
			TurnID:        m.TurnID,
			ParticipantID: m.ParticipantID,
			Claim:         m.Claim,
			Verdict:       types.VerdictLabel(m.Verdict),
			Explanation:   m.Explanation,
			Confidence:    m.Confidence,
			Lie:           m.Lie,
			Sources:       m.Sources,
			CreatedAt:     m.CreatedAt,
		})
	}
	return out, nil
}

// CreateAlert implements VerdictStore.
func (s *GormStore) CreateAlert(ctx context.Context, a *types.Alert) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	m := alertModel{
		ID:              a.ID,
		DebateID:        a.DebateID,
		VerdictID:       a.VerdictID,
		ParticipantName: a.ParticipantName,
		Claim:           a.Claim,
		Explanation:     a.Explanation,
		Severity:        string(a.Severity),
		CreatedAt:       a.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("create alert: %w", err)
	}
	s.publish(ctx, TableAlerts, "insert", a.DebateID, a.ID)
	return nil
}

// ListAlerts implements VerdictStore.
func (s *GormStore) ListAlerts(ctx context.Context, debateID string) ([]*types.Alert, error) {
	var ms []alertModel
	if err := s.db.WithContext(ctx).
		Where("debate_id = ?", debateID).
		Order("created_at asc").
		Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	out := make([]*types.Alert, 0, len(ms))
	for _, m := range ms {
		out = append(out, &types.Alert{
			ID:              m.ID,
			DebateID:        m.DebateID,
			VerdictID:       m.VerdictID,
			ParticipantName: m.ParticipantName,
			Claim:           m.Claim,
			Explanation:     m.Explanation,
			Severity:        types.AlertSeverity(m.Severity),
			CreatedAt:       m.CreatedAt,
		})
	}
	return out, nil
}

// --- summaries ------------------------------------------------------------

// CreateSummary implements SummaryStore. At most one summary exists per
// debate; a duplicate insert is a no-op.
func (s *GormStore) CreateSummary(ctx context.Context, sum *types.Summary) error {
	if sum.CreatedAt.IsZero() {
		sum.CreatedAt = time.Now()
	}
	m := summaryModel{
		ID:              sum.ID,
		DebateID:        sum.DebateID,
		Overall:         sum.Overall,
		WinnerAnalysis:  sum.WinnerAnalysis,
		AccuracyScores:  sum.AccuracyScores,
		KeyArguments:    sum.KeyArguments,
		VerdictCounts:   sum.VerdictCounts,
		Sources:         sum.Sources,
		Recommendations: sum.Recommendations,
		Votes:           sum.Votes,
		CreatedAt:       sum.CreatedAt,
	}
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "debate_id"}},
			DoNothing: true,
		}).
		Create(&m)
	if res.Error != nil {
		return fmt.Errorf("create summary: %w", res.Error)
	}
	s.publish(ctx, TableSummaries, "insert", sum.DebateID, sum.ID)
	return nil
}

// GetSummary implements SummaryStore.
func (s *GormStore) GetSummary(ctx context.Context, debateID string) (*types.Summary, error) {
	var m summaryModel
	if err := s.db.WithContext(ctx).First(&m, "debate_id = ?", debateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get summary: %w", err)
	}
	return &types.Summary{
		ID:              m.ID,
		DebateID:        m.DebateID,
		Overall:         m.Overall,
		WinnerAnalysis:  m.WinnerAnalysis,
		AccuracyScores:  m.AccuracyScores,
		KeyArguments:    m.KeyArguments,
		VerdictCounts:   m.VerdictCounts,
		Sources:         m.Sources,
		Recommendations: m.Recommendations,
		Votes:           m.Votes,
		CreatedAt:       m.CreatedAt,
	}, nil
}

// --- votes ----------------------------------------------------------------

// AddVote implements VoteStore with an atomic counter upsert.
func (s *GormStore) AddVote(ctx context.Context, debateID string, side types.Role) error {
	var proInc, conInc int
	switch side {
	case types.RolePro:
		proInc = 1
	case types.RoleCon:
		conInc = 1
	default:
		return fmt.Errorf("vote side must be pro or con, got %q", side)
	}

	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "debate_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"pro_votes": gorm.Expr("pro_votes + ?", proInc),
				"con_votes": gorm.Expr("con_votes + ?", conInc),
			}),
		}).
		Create(&voteModel{DebateID: debateID, ProVotes: proInc, ConVotes: conInc})
	if res.Error != nil {
		return fmt.Errorf("add vote: %w", res.Error)
	}
	return nil
}

// GetTally implements VoteStore. A debate with no votes has a zero
// tally, not an error.
func (s *GormStore) GetTally(ctx context.Context, debateID string) (*types.VoteTally, error) {
	var m voteModel
	err := s.db.WithContext(ctx).First(&m, "debate_id = ?", debateID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &types.VoteTally{DebateID: debateID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get tally: %w", err)
	}
	return &types.VoteTally{DebateID: m.DebateID, ProVotes: m.ProVotes, ConVotes: m.ConVotes}, nil
}

// --- documents ------------------------------------------------------------

// SaveDocument implements DocumentStore.
func (s *GormStore) SaveDocument(ctx context.Context, d *Document) error {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	m := documentModel{
		ID:        d.ID,
		DebateID:  d.DebateID,
		Side:      string(d.Side),
		Title:     d.Title,
		URL:       d.URL,
		Content:   d.Content,
		CreatedAt: d.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

// ListDocuments implements DocumentStore.
func (s *GormStore) ListDocuments(ctx context.Context, debateID string) ([]*Document, error) {
	var ms []documentModel
	if err := s.db.WithContext(ctx).
		Where("debate_id = ?", debateID).
		Order("created_at asc").
		Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	out := make([]*Document, 0, len(ms))
	for _, m := range ms {
		out = append(out, &Document{
			ID:        m.ID,
			DebateID:  m.DebateID,
			Side:      types.Role(m.Side),
			Title:     m.Title,
			URL:       m.URL,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		})
	}
	return out, nil
}

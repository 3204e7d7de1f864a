// internal/service/study_service.go
package service

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"go_5_study_engine/internal/config"
	"go_5_study_engine/internal/middleware"
	"go_5_study_engine/internal/model"
	"go_5_study_engine/internal/repository"
	"go_5_study_engine/internal/similarity"
	"go_5_study_engine/internal/srs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StudyService インターフェース。
// 学習セッションのライフサイクル (作成 → 回答記録/スナップショット更新 → 完了) を管理します。
// 各操作は最新の永続化済み状態を読み直してから所有権と終了状態を検証します。
// 操作をまたいでセッション状態をキャッシュすることはありません。
type StudyService interface {
	CreateSession(ctx context.Context, tenantID uuid.UUID, req *model.CreateSessionRequest) (*model.StudySession, error)
	GetSession(ctx context.Context, tenantID, sessionID uuid.UUID) (*model.StudySession, error)
	ListActiveSessions(ctx context.Context, tenantID uuid.UUID, setID *uuid.UUID) ([]*model.StudySession, error)
	RecordAnswer(ctx context.Context, tenantID, sessionID uuid.UUID, req *model.RecordAnswerRequest) (*model.ProgressResponse, error)
	UpdateSnapshot(ctx context.Context, tenantID, sessionID uuid.UUID, req *model.UpdateSnapshotRequest) error
	CompleteSession(ctx context.Context, tenantID, sessionID uuid.UUID, req *model.CompleteSessionRequest) (*model.StudySession, error)
	ListDueCards(ctx context.Context, tenantID uuid.UUID) ([]*model.DueCardResponse, error)
}

type studyService struct {
	db          *gorm.DB
	sessionRepo repository.SessionRepository
	progRepo    repository.ProgressRepository
	answerRepo  repository.AnswerRepository
	cardRepo    repository.FlashcardRepository
	cfg         *config.Config
}

func NewStudyService(
	db *gorm.DB,
	sessionRepo repository.SessionRepository,
	progRepo repository.ProgressRepository,
	answerRepo repository.AnswerRepository,
	cardRepo repository.FlashcardRepository,
	cfg *config.Config,
) StudyService {
	return &studyService{
		db:          db,
		sessionRepo: sessionRepo,
		progRepo:    progRepo,
		answerRepo:  answerRepo,
		cardRepo:    cardRepo,
		cfg:         cfg,
	}
}

func (s *studyService) CreateSession(ctx context.Context, tenantID uuid.UUID, req *model.CreateSessionRequest) (*model.StudySession, error) {
	logger := middleware.GetLogger(ctx).With("tenant_id", tenantID)

	setID, err := uuid.Parse(req.SetID)
	if err != nil {
		return nil, model.NewAppError("VALIDATION_ERROR", "セットIDの形式が正しくありません。", "set_id", model.ErrInvalidInput)
	}
	mode := model.StudyMode(req.Mode)
	if !mode.IsValid() {
		return nil, model.NewAppError("VALIDATION_ERROR", "不明な学習モードです。", "mode", model.ErrInvalidInput)
	}

	// セットのカード一覧は外部のセット管理システムのデータを読み取り専用で参照する
	cards, err := s.cardRepo.FindBySet(ctx, s.db, setID)
	if err != nil {
		logger.Error("Failed to load flashcards for set", "set_id", setID, "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "カードの取得に失敗しました。", "", err)
	}
	if len(cards) == 0 {
		// 空のセットではセッションを開始できない
		return nil, model.NewAppError("EMPTY_SET", "このセットにはカードがありません。", "set_id", model.ErrEmptySet)
	}

	// 出題順を作成時に確定する (以後不変)
	order := make(model.CardOrder, 0, len(cards))
	for _, c := range cards {
		order = append(order, c.FlashcardID)
	}
	if shuffleModes[mode] {
		rand.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	}

	session := &model.StudySession{
		SessionID:    uuid.New(),
		TenantID:     tenantID,
		SetID:        setID,
		Mode:         mode,
		TotalCards:   len(cards),
		CardOrder:    order,
		CurrentIndex: 0,
		Completed:    false,
		StartedAt:    time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, s.db, session); err != nil {
		logger.Error("Failed to create study session", "set_id", setID, "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "セッションの作成に失敗しました。", "", err)
	}

	logger.Info("Study session created", "session_id", session.SessionID, "mode", mode, "total_cards", session.TotalCards)
	return session, nil
}

// shuffleModes は出題順をシャッフルするモードの集合。
// flashcard / writing はセットの登録順のまま出題する。
var shuffleModes = map[model.StudyMode]bool{
	model.ModeQuiz:  true,
	model.ModeMatch: true,
}

func (s *studyService) GetSession(ctx context.Context, tenantID, sessionID uuid.UUID) (*model.StudySession, error) {
	// 完了済みセッションも参照は可能 (結果表示用)
	return s.loadOwnedSession(ctx, tenantID, sessionID)
}

func (s *studyService) ListActiveSessions(ctx context.Context, tenantID uuid.UUID, setID *uuid.UUID) ([]*model.StudySession, error) {
	logger := middleware.GetLogger(ctx).With("tenant_id", tenantID)

	sessions, err := s.sessionRepo.FindActiveByTenant(ctx, s.db, tenantID, setID)
	if err != nil {
		logger.Error("Failed to list active sessions", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "セッション一覧の取得に失敗しました。", "", err)
	}
	return sessions, nil
}

func (s *studyService) RecordAnswer(ctx context.Context, tenantID, sessionID uuid.UUID, req *model.RecordAnswerRequest) (*model.ProgressResponse, error) {
	logger := middleware.GetLogger(ctx).With("tenant_id", tenantID, "session_id", sessionID)

	session, err := s.loadOwnedActiveSession(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}

	flashcardID, err := uuid.Parse(req.FlashcardID)
	if err != nil {
		return nil, model.NewAppError("VALIDATION_ERROR", "カードIDの形式が正しくありません。", "flashcard_id", model.ErrInvalidInput)
	}
	if !session.CardOrder.Contains(flashcardID) {
		// セッションの出題対象に含まれないカード
		return nil, model.NewAppError("NOT_FOUND", "このセッションの対象カードではありません。", "flashcard_id", model.ErrNotFound)
	}

	isCorrect, err := s.resolveCorrectness(ctx, session, flashcardID, req)
	if err != nil {
		return nil, err
	}

	quality, err := srs.Evaluate(isCorrect, req.TimeSpentMs)
	if err != nil {
		// 負の回答時間など
		return nil, model.NewAppError("VALIDATION_ERROR", "回答時間が不正です。", "time_spent_ms", model.ErrInvalidInput)
	}

	now := time.Now()
	var updated *model.CardProgress

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. 回答を追記する (重複回答もそのまま記録する)
		answer := &model.Answer{
			AnswerID:    uuid.New(),
			SessionID:   session.SessionID,
			FlashcardID: flashcardID,
			IsCorrect:   isCorrect,
			TimeSpentMs: req.TimeSpentMs,
			RecordedAt:  now,
		}
		if err := s.answerRepo.Create(ctx, tx, answer); err != nil {
			logger.Error("Error creating answer in transaction", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "回答の記録に失敗しました。", "", err)
		}

		// 2. カードの学習進捗をSM-2で更新する
		progress, err := s.progRepo.FindByFlashcard(ctx, tx, tenantID, flashcardID)
		if err != nil && !errors.Is(err, model.ErrNotFound) {
			logger.Error("Error finding progress in transaction", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "学習進捗の確認中にエラーが発生しました。", "", err)
		}
		isFound := !errors.Is(err, model.ErrNotFound)

		state := srs.NewState()
		if isFound {
			state = srs.State{
				EaseFactor:   progress.EaseFactor,
				IntervalDays: progress.IntervalDays,
				Repetitions:  progress.Repetitions,
				NextReviewAt: progress.NextReviewAt,
			}
		}
		next := srs.Apply(state, quality, now)

		if !isFound {
			// --- 初回復習: 進捗レコードを新規作成 ---
			progress = &model.CardProgress{
				ProgressID:     uuid.New(),
				TenantID:       tenantID,
				FlashcardID:    flashcardID,
				EaseFactor:     next.EaseFactor,
				IntervalDays:   next.IntervalDays,
				Repetitions:    next.Repetitions,
				NextReviewAt:   next.NextReviewAt,
				LastReviewedAt: &now,
			}
			if createErr := s.progRepo.Create(ctx, tx, progress); createErr != nil {
				logger.Error("Error creating new progress", "error", createErr)
				return model.NewAppError("INTERNAL_SERVER_ERROR", "学習進捗の作成に失敗しました。", "", createErr)
			}
		} else {
			// --- 更新 ---
			progress.EaseFactor = next.EaseFactor
			progress.IntervalDays = next.IntervalDays
			progress.Repetitions = next.Repetitions
			progress.NextReviewAt = next.NextReviewAt
			progress.LastReviewedAt = &now
			if updateErr := s.progRepo.Update(ctx, tx, progress); updateErr != nil {
				logger.Error("Error updating existing progress", "error", updateErr)
				return model.NewAppError("INTERNAL_SERVER_ERROR", "学習進捗の更新に失敗しました。", "", updateErr)
			}
		}

		updated = progress
		return nil // トランザクション成功
	})
	if err != nil {
		var appErr *model.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		logger.Error("Transaction failed for RecordAnswer", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "回答の記録に失敗しました。", "", err)
	}

	logger.Info("Answer recorded", "flashcard_id", flashcardID, "is_correct", isCorrect, "quality", int(quality))

	// currentIndex はここでは進めない (クライアント主導でスナップショット更新により進む)
	return &model.ProgressResponse{
		FlashcardID:  updated.FlashcardID,
		EaseFactor:   updated.EaseFactor,
		IntervalDays: updated.IntervalDays,
		Repetitions:  updated.Repetitions,
		NextReviewAt: updated.NextReviewAt,
		LastReviewed: updated.LastReviewedAt,
		IsCorrect:    isCorrect,
		Quality:      int(quality),
	}, nil
}

// resolveCorrectness は回答の正誤を決定します。
// is_correct が指定されていればそれを信頼し、answer_text のみの場合は
// writingモードなら類似度判定、それ以外のモードでは正解面との完全一致で判定します。
func (s *studyService) resolveCorrectness(ctx context.Context, session *model.StudySession, flashcardID uuid.UUID, req *model.RecordAnswerRequest) (bool, error) {
	if req.IsCorrect != nil {
		return *req.IsCorrect, nil
	}
	if req.AnswerText == nil {
		return false, model.NewAppError("VALIDATION_ERROR", "is_correct または answer_text のどちらかを指定してください。", "", model.ErrInvalidInput)
	}

	card, err := s.cardRepo.FindByID(ctx, s.db, flashcardID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return false, model.NewAppError("NOT_FOUND", "カードが見つかりませんでした。", "flashcard_id", model.ErrNotFound)
		}
		return false, model.NewAppError("INTERNAL_SERVER_ERROR", "カードの取得に失敗しました。", "", err)
	}

	if session.Mode == model.ModeWriting {
		return similarity.IsAcceptable(*req.AnswerText, card.Back, s.cfg.App.SimilarityThreshold), nil
	}
	// writing以外のモードは類似度判定を使わず文字列の完全一致で判定する
	return *req.AnswerText == card.Back, nil
}

func (s *studyService) UpdateSnapshot(ctx context.Context, tenantID, sessionID uuid.UUID, req *model.UpdateSnapshotRequest) error {
	logger := middleware.GetLogger(ctx).With("tenant_id", tenantID, "session_id", sessionID)

	session, err := s.loadOwnedActiveSession(ctx, tenantID, sessionID)
	if err != nil {
		return err
	}

	if *req.CurrentIndex < 0 || *req.CurrentIndex > session.TotalCards {
		return model.NewAppError("VALIDATION_ERROR", "現在位置がカード数の範囲外です。", "current_index", model.ErrInvalidInput)
	}

	// 丸ごと置換 (last-write-wins)。同時更新の調停は行わない。
	if err := s.sessionRepo.UpdateSnapshot(ctx, s.db, sessionID, req.Snapshot, *req.CurrentIndex); err != nil {
		if errors.Is(err, model.ErrAlreadyCompleted) {
			// 事前チェック後に完了された競合ケース
			return model.NewAppError("ALREADY_COMPLETED", "セッションは既に完了しています。", "", model.ErrAlreadyCompleted)
		}
		logger.Error("Failed to update session snapshot", "error", err)
		return model.NewAppError("INTERNAL_SERVER_ERROR", "スナップショットの更新に失敗しました。", "", err)
	}

	logger.Debug("Session snapshot updated", "current_index", *req.CurrentIndex)
	return nil
}

func (s *studyService) CompleteSession(ctx context.Context, tenantID, sessionID uuid.UUID, req *model.CompleteSessionRequest) (*model.StudySession, error) {
	logger := middleware.GetLogger(ctx).With("tenant_id", tenantID, "session_id", sessionID)

	if _, err := s.loadOwnedActiveSession(ctx, tenantID, sessionID); err != nil {
		return nil, err
	}

	// 条件付き更新 (completed=false のときのみ成功)。
	// チェック後にレースで完了されていた場合もここで検出される。
	completedAt := time.Now()
	if err := s.sessionRepo.Complete(ctx, s.db, sessionID, req.Score, completedAt); err != nil {
		if errors.Is(err, model.ErrAlreadyCompleted) {
			return nil, model.NewAppError("ALREADY_COMPLETED", "セッションは既に完了しています。", "", model.ErrAlreadyCompleted)
		}
		logger.Error("Failed to complete session", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "セッションの完了に失敗しました。", "", err)
	}

	// 確定後の状態を読み直して返す
	session, err := s.sessionRepo.FindByID(ctx, s.db, sessionID)
	if err != nil {
		logger.Error("Failed to reload completed session", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "セッションの取得に失敗しました。", "", err)
	}

	logger.Info("Study session completed", "score", req.Score)
	return session, nil
}

func (s *studyService) ListDueCards(ctx context.Context, tenantID uuid.UUID) ([]*model.DueCardResponse, error) {
	logger := middleware.GetLogger(ctx).With("tenant_id", tenantID)

	progresses, err := s.progRepo.FindDueByTenant(ctx, s.db, tenantID, time.Now(), s.cfg.App.DueLimit)
	if err != nil {
		logger.Error("Failed to find due cards from repository", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "復習カードの取得に失敗しました。", "", err)
	}

	responses := make([]*model.DueCardResponse, 0, len(progresses))
	for _, p := range progresses {
		if p.Flashcard == nil {
			logger.Warn("Found progress with nil Flashcard during due list generation, skipping", "progress_id", p.ProgressID)
			continue
		}
		responses = append(responses, &model.DueCardResponse{
			FlashcardID:  p.FlashcardID,
			Front:        p.Flashcard.Front,
			Back:         p.Flashcard.Back,
			IntervalDays: p.IntervalDays,
			Repetitions:  p.Repetitions,
			NextReviewAt: p.NextReviewAt,
		})
	}

	logger.Info("Successfully retrieved due cards", "count", len(responses))
	return responses, nil
}

// loadOwnedSession はセッションを読み直し、所有権を検証します。
// 所有者以外には存在を秘匿せず Forbidden を返します。
func (s *studyService) loadOwnedSession(ctx context.Context, tenantID, sessionID uuid.UUID) (*model.StudySession, error) {
	session, err := s.sessionRepo.FindByID(ctx, s.db, sessionID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("NOT_FOUND", "セッションが見つかりませんでした。", "session_id", model.ErrNotFound)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "セッションの取得に失敗しました。", "", err)
	}
	if session.TenantID != tenantID {
		return nil, model.NewAppError("FORBIDDEN", "このセッションへのアクセス権がありません。", "", model.ErrForbidden)
	}
	return session, nil
}

// loadOwnedActiveSession は所有権に加えて終了状態も検証します。
// 完了済みセッションへの変更操作はすべて AlreadyCompleted で拒否されます。
func (s *studyService) loadOwnedActiveSession(ctx context.Context, tenantID, sessionID uuid.UUID) (*model.StudySession, error) {
	session, err := s.loadOwnedSession(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Completed {
		return nil, model.NewAppError("ALREADY_COMPLETED", "セッションは既に完了しています。", "", model.ErrAlreadyCompleted)
	}
	return session, nil
}

// internal/service/study_service_test.go
package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go_5_study_engine/internal/config"
	"go_5_study_engine/internal/model"
	"go_5_study_engine/internal/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// --- テストヘルパー関数 (インメモリDBセットアップ) ---
// DB操作自体はモックするが、サービスが *gorm.DB (トランザクション用) を
// 必要とするため形だけ用意する。
func setupTestDBStudy() *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic("failed to connect database for study service testing: " + err.Error())
	}
	return db
}

func testConfigStudy() *config.Config {
	cfg := &config.Config{}
	cfg.App.DueLimit = 10
	cfg.App.SimilarityThreshold = 90.0
	return cfg
}

func boolPtr(b bool) *bool       { return &b }
func strPtr(s string) *string    { return &s }
func intPtr(i int) *int          { return &i }
func floatPtr(f float64) *float64 { return &f }

// assertAppErrorCode は AppError のコードを検証する (DBエラーはコードで判定する)
func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *model.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Detail.Code)
}

// --- Test CreateSession ---
func Test_studyService_CreateSession(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	setID := uuid.New()
	card1 := &model.Flashcard{FlashcardID: uuid.New(), SetID: setID, Front: "apple", Back: "りんご"}
	card2 := &model.Flashcard{FlashcardID: uuid.New(), SetID: setID, Front: "grape", Back: "ぶどう"}
	card3 := &model.Flashcard{FlashcardID: uuid.New(), SetID: setID, Front: "peach", Back: "もも"}

	tests := []struct {
		name      string
		req       *model.CreateSessionRequest
		setupMock func(sessionRepo *mocks.SessionRepository, cardRepo *mocks.FlashcardRepository)
		wantErr   error
		wantCode  string
		check     func(t *testing.T, session *model.StudySession)
	}{
		{
			name: "正常系: flashcardモードは登録順のまま出題順が確定する",
			req:  &model.CreateSessionRequest{SetID: setID.String(), Mode: "flashcard"},
			setupMock: func(sessionRepo *mocks.SessionRepository, cardRepo *mocks.FlashcardRepository) {
				cardRepo.On("FindBySet", ctx, mock.AnythingOfType("*gorm.DB"), setID).
					Return([]*model.Flashcard{card1, card2, card3}, nil).Once()
				sessionRepo.On("Create", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.StudySession")).
					Return(nil).Once()
			},
			wantErr: nil,
			check: func(t *testing.T, session *model.StudySession) {
				assert.Equal(t, tenantID, session.TenantID)
				assert.Equal(t, setID, session.SetID)
				assert.Equal(t, model.ModeFlashcard, session.Mode)
				assert.Equal(t, 3, session.TotalCards)
				assert.Equal(t, 0, session.CurrentIndex)
				assert.False(t, session.Completed)
				assert.NotEqual(t, uuid.Nil, session.SessionID)
				// シャッフルしないモードは登録順のまま
				require.Len(t, session.CardOrder, 3)
				assert.Equal(t, card1.FlashcardID, session.CardOrder[0])
				assert.Equal(t, card2.FlashcardID, session.CardOrder[1])
				assert.Equal(t, card3.FlashcardID, session.CardOrder[2])
			},
		},
		{
			name: "正常系: quizモードは全カードを含む順列が出題順になる",
			req:  &model.CreateSessionRequest{SetID: setID.String(), Mode: "quiz"},
			setupMock: func(sessionRepo *mocks.SessionRepository, cardRepo *mocks.FlashcardRepository) {
				cardRepo.On("FindBySet", ctx, mock.AnythingOfType("*gorm.DB"), setID).
					Return([]*model.Flashcard{card1, card2, card3}, nil).Once()
				sessionRepo.On("Create", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.StudySession")).
					Return(nil).Once()
			},
			wantErr: nil,
			check: func(t *testing.T, session *model.StudySession) {
				// シャッフル結果の並びは不定だが、全カードを1回ずつ含む
				require.Len(t, session.CardOrder, 3)
				assert.True(t, session.CardOrder.Contains(card1.FlashcardID))
				assert.True(t, session.CardOrder.Contains(card2.FlashcardID))
				assert.True(t, session.CardOrder.Contains(card3.FlashcardID))
			},
		},
		{
			name: "異常系: セットにカードが1枚もない",
			req:  &model.CreateSessionRequest{SetID: setID.String(), Mode: "flashcard"},
			setupMock: func(sessionRepo *mocks.SessionRepository, cardRepo *mocks.FlashcardRepository) {
				cardRepo.On("FindBySet", ctx, mock.AnythingOfType("*gorm.DB"), setID).
					Return([]*model.Flashcard{}, nil).Once()
				// セッションは作成されないはず
			},
			wantErr: model.ErrEmptySet,
		},
		{
			name:      "異常系: set_idの形式が不正",
			req:       &model.CreateSessionRequest{SetID: "not-a-uuid", Mode: "flashcard"},
			setupMock: func(sessionRepo *mocks.SessionRepository, cardRepo *mocks.FlashcardRepository) {},
			wantErr:   model.ErrInvalidInput,
		},
		{
			name:      "異常系: 不明な学習モード",
			req:       &model.CreateSessionRequest{SetID: setID.String(), Mode: "cramming"},
			setupMock: func(sessionRepo *mocks.SessionRepository, cardRepo *mocks.FlashcardRepository) {},
			wantErr:   model.ErrInvalidInput,
		},
		{
			name: "異常系: セッション作成時のDBエラー",
			req:  &model.CreateSessionRequest{SetID: setID.String(), Mode: "flashcard"},
			setupMock: func(sessionRepo *mocks.SessionRepository, cardRepo *mocks.FlashcardRepository) {
				cardRepo.On("FindBySet", ctx, mock.AnythingOfType("*gorm.DB"), setID).
					Return([]*model.Flashcard{card1}, nil).Once()
				sessionRepo.On("Create", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.StudySession")).
					Return(errors.New("db error")).Once()
			},
			wantCode: "INTERNAL_SERVER_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDBStudy()
			sessionRepo := new(mocks.SessionRepository)
			progRepo := new(mocks.ProgressRepository)
			answerRepo := new(mocks.AnswerRepository)
			cardRepo := new(mocks.FlashcardRepository)
			svc := NewStudyService(db, sessionRepo, progRepo, answerRepo, cardRepo, testConfigStudy())

			tt.setupMock(sessionRepo, cardRepo)

			session, err := svc.CreateSession(ctx, tenantID, tt.req)

			if tt.wantErr != nil || tt.wantCode != "" {
				require.Error(t, err)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
				if tt.wantCode != "" {
					assertAppErrorCode(t, err, tt.wantCode)
				}
				assert.Nil(t, session)
			} else {
				require.NoError(t, err)
				require.NotNil(t, session)
				if tt.check != nil {
					tt.check(t, session)
				}
			}
			sessionRepo.AssertExpectations(t)
			cardRepo.AssertExpectations(t)
		})
	}
}

// --- Test GetSession ---
func Test_studyService_GetSession(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	otherTenantID := uuid.New()
	sessionID := uuid.New()

	tests := []struct {
		name      string
		setupMock func(m *mocks.SessionRepository)
		wantErr   error
	}{
		{
			name: "正常系: 自分のセッションを取得できる",
			setupMock: func(m *mocks.SessionRepository) {
				m.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), sessionID).
					Return(&model.StudySession{SessionID: sessionID, TenantID: tenantID}, nil).Once()
			},
			wantErr: nil,
		},
		{
			name: "正常系: 完了済みセッションも参照できる",
			setupMock: func(m *mocks.SessionRepository) {
				m.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), sessionID).
					Return(&model.StudySession{SessionID: sessionID, TenantID: tenantID, Completed: true}, nil).Once()
			},
			wantErr: nil,
		},
		{
			name: "異常系: セッションが存在しない",
			setupMock: func(m *mocks.SessionRepository) {
				m.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), sessionID).
					Return(nil, model.ErrNotFound).Once()
			},
			wantErr: model.ErrNotFound,
		},
		{
			name: "異常系: 他テナントのセッション",
			setupMock: func(m *mocks.SessionRepository) {
				m.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), sessionID).
					Return(&model.StudySession{SessionID: sessionID, TenantID: otherTenantID}, nil).Once()
			},
			wantErr: model.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDBStudy()
			sessionRepo := new(mocks.SessionRepository)
			svc := NewStudyService(db, sessionRepo, new(mocks.ProgressRepository), new(mocks.AnswerRepository), new(mocks.FlashcardRepository), testConfigStudy())

			tt.setupMock(sessionRepo)

			session, err := svc.GetSession(ctx, tenantID, sessionID)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, session)
			} else {
				require.NoError(t, err)
				require.NotNil(t, session)
				assert.Equal(t, sessionID, session.SessionID)
			}
			sessionRepo.AssertExpectations(t)
		})
	}
}

// --- Test ListActiveSessions ---
func Test_studyService_ListActiveSessions(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	setID := uuid.New()

	t.Run("正常系: set_id指定でフィルタして取得", func(t *testing.T) {
		db := setupTestDBStudy()
		sessionRepo := new(mocks.SessionRepository)
		svc := NewStudyService(db, sessionRepo, new(mocks.ProgressRepository), new(mocks.AnswerRepository), new(mocks.FlashcardRepository), testConfigStudy())

		expected := []*model.StudySession{{SessionID: uuid.New(), TenantID: tenantID, SetID: setID}}
		sessionRepo.On("FindActiveByTenant", ctx, mock.AnythingOfType("*gorm.DB"), tenantID, &setID).
			Return(expected, nil).Once()

		sessions, err := svc.ListActiveSessions(ctx, tenantID, &setID)
		require.NoError(t, err)
		assert.Equal(t, expected, sessions)
		sessionRepo.AssertExpectations(t)
	})

	t.Run("異常系: リポジトリでDBエラー", func(t *testing.T) {
		db := setupTestDBStudy()
		sessionRepo := new(mocks.SessionRepository)
		svc := NewStudyService(db, sessionRepo, new(mocks.ProgressRepository), new(mocks.AnswerRepository), new(mocks.FlashcardRepository), testConfigStudy())

		sessionRepo.On("FindActiveByTenant", ctx, mock.AnythingOfType("*gorm.DB"), tenantID, (*uuid.UUID)(nil)).
			Return(nil, errors.New("db error")).Once()

		sessions, err := svc.ListActiveSessions(ctx, tenantID, nil)
		require.Error(t, err)
		assertAppErrorCode(t, err, "INTERNAL_SERVER_ERROR")
		assert.Nil(t, sessions)
		sessionRepo.AssertExpectations(t)
	})
}

// --- Test RecordAnswer ---
func Test_studyService_RecordAnswer(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	otherTenantID := uuid.New()
	sessionID := uuid.New()
	flashcardID := uuid.New()

	activeSession := func() *model.StudySession {
		return &model.StudySession{
			SessionID:  sessionID,
			TenantID:   tenantID,
			Mode:       model.ModeFlashcard,
			TotalCards: 1,
			CardOrder:  model.CardOrder{flashcardID},
		}
	}

	tests := []struct {
		name      string
		req       *model.RecordAnswerRequest
		setupMock func(sessionRepo *mocks.SessionRepository, progRepo *mocks.ProgressRepository, answerRepo *mocks.AnswerRepository, cardRepo *mocks.FlashcardRepository)
		wantErr   error
		wantCode  string
		check     func(t *testing.T, resp *model.ProgressResponse)
	}{
		{
			name: "正常系: 初回の正解回答で進捗が新規作成される (3秒未満はquality=5)",
			req:  &model.RecordAnswerRequest{FlashcardID: flashcardID.String(), IsCorrect: boolPtr(true), TimeSpentMs: intPtr(2500)},
			setupMock: func(sessionRepo *mocks.SessionRepository, progRepo *mocks.ProgressRepository, answerRepo *mocks.AnswerRepository, cardRepo *mocks.FlashcardRepository) {
				sessionRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), sessionID).
					Return(activeSession(), nil).Once()
				answerRepo.On("Create", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.Answer")).
					Run(func(args mock.Arguments) {
						answer := args.Get(2).(*model.Answer)
						assert.Equal(t, sessionID, answer.SessionID)
						assert.Equal(t, flashcardID, answer.FlashcardID)
						assert.True(t, answer.IsCorrect)
					}).Return(nil).Once()
				progRepo.On("FindByFlashcard", ctx, mock.AnythingOfType("*gorm.DB"), tenantID, flashcardID).
					Return(nil, model.ErrNotFound).Once()
				progRepo.On("Create", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.CardProgress")).
					Run(func(args mock.Arguments) {
						prog := args.Get(2).(*model.CardProgress)
						assert.Equal(t, tenantID, prog.TenantID)
						assert.Equal(t, flashcardID, prog.FlashcardID)
						assert.Equal(t, 1, prog.Repetitions)
						assert.Equal(t, 1, prog.IntervalDays)
						assert.InDelta(t, 2.6, prog.EaseFactor, 0.0001)
						assert.WithinDuration(t, time.Now().AddDate(0, 0, 1), prog.NextReviewAt, time.Second*5)
					}).Return(nil).Once()
			},
			wantErr: nil,
			check: func(t *testing.T, resp *model.ProgressResponse) {
				assert.True(t, resp.IsCorrect)
				assert.Equal(t, 5, resp.Quality)
				assert.Equal(t, 1, resp.Repetitions)
				assert.Equal(t, 1, resp.IntervalDays)
			},
		},
		{
			name: "正常系: 2回目の正解で間隔が6日に伸びる (時間未指定はquality=4)",
			req:  &model.RecordAnswerRequest{FlashcardID: flashcardID.String(), IsCorrect: boolPtr(true)},
			setupMock: func(sessionRepo *mocks.SessionRepository, progRepo *mocks.ProgressRepository, answerRepo *mocks.AnswerRepository, cardRepo *mocks.FlashcardRepository) {
				sessionRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), sessionID).
					Return(activeSession(), nil).Once()
				answerRepo.On("Create", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.Answer")).
					Return(nil).Once()
				existing := &model.CardProgress{
					ProgressID: uuid.New(), TenantID: tenantID, FlashcardID: flashcardID,
					EaseFactor: 2.5, IntervalDays: 1, Repetitions: 1,
					NextReviewAt: time.Now(),
				}
				progRepo.On("FindByFlashcard", ctx, mock.AnythingOfType("*gorm.DB"), tenantID, flashcardID).
					Return(existing, nil).Once()
				progRepo.On("Update", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.CardProgress")).
					Run(func(args mock.Arguments) {
						prog := args.Get(2).(*model.CardProgress)
						assert.Equal(t, 2, prog.Repetitions)
						assert.Equal(t, 6, prog.IntervalDays)
						// quality=4 では ease は変化しない
						assert.InDelta(t, 2.5, prog.EaseFactor, 0.0001)
					}).Return(nil).Once()
			},
			wantErr: nil,
			check: func(t *testing.T, resp *model.ProgressResponse) {
				assert.Equal(t, 4, resp.Quality)
				assert.Equal(t, 6, resp.IntervalDays)
			},
		},
		{
			name: "正常系: 不正解で反復回数と間隔がリセットされる",
			req:  &model.RecordAnswerRequest{FlashcardID: flashcardID.String(), IsCorrect: boolPtr(false)},
			setupMock: func(sessionRepo *mocks.SessionRepository, progRepo *mocks.ProgressRepository, answerRepo *mocks.AnswerRepository, cardRepo *mocks.FlashcardRepository) {
				sessionRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), sessionID).
					Return(activeSession(), nil).Once()
				answerRepo.On("Create", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.Answer")).
					Return(nil).Once()
				existing := &model.CardProgress{
					ProgressID: uuid.New(), TenantID: tenantID, FlashcardID: flashcardID,
					EaseFactor: 2.5, IntervalDays: 6, Repetitions: 2,
					NextReviewAt: time.Now(),
				}
				progRepo.On("FindByFlashcard", ctx, mock.AnythingOfType("*gorm.DB"), tenantID, flashcardID).
					Return(existing, nil).Once()
				progRepo.On("Update", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.CardProgress")).
					Run(func(args mock.Arguments) {
						prog := args.Get(2).(*model.CardProgress)
						assert.Equal(t, 0, prog.Repetitions)
						assert.Equal(t, 1, prog.IntervalDays)
						// ease は下がるが下限1.3を割らない
						assert.InDelta(t, 1.7, prog.EaseFactor, 0.0001)
					}).Return(nil).Once()
			},
			wantErr: nil,
			check: func(t *testing.T, resp *model.ProgressResponse) {
				assert.False(t, resp.IsCorrect)
				assert.Equal(t, 0, resp.Quality)
			},
		},
		{
			name: "異常系: 完了済みセッションには回答できない",
			req:  &model.RecordAnswerRequest{FlashcardID: flashcardID.String(), IsCorrect: boolPtr(true)},
			setupMock: func(sessionRepo *mocks.SessionRepository, progRepo *mocks.ProgressRepository, answerRepo *mocks.AnswerRepository, cardRepo *mocks.FlashcardRepository) {
				done := activeSession()
				done.Completed = true
				sessionRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), sessionID).
					Return(done, nil).Once()
			},
			wantErr: model.ErrAlreadyCompleted,
		},
		{
			name: "異常系: 他テナントのセッションには回答できない",
			req:  &model.RecordAnswerRequest{FlashcardID: flashcardID.String(), IsCorrect: boolPtr(true)},
			setupMock: func(sessionRepo *mocks.SessionRepository, progRepo *mocks.ProgressRepository, answerRepo *mocks.AnswerRepository, cardRepo *mocks.FlashcardRepository) {
				other := activeSession()
				other.TenantID = otherTenantID
				sessionRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), sessionID).
					Return(other, nil).Once()
			},
			wantErr: model.ErrForbidden,
		},
		{
			name: "異常系: セッションが存在しない",
			req:  &model.RecordAnswerRequest{FlashcardID: flashcardID.String(), IsCorrect: boolPtr(true)},
			setupMock: func(sessionRepo *mocks.SessionRepository, progRepo *mocks.ProgressRepository, answerRepo *mocks.AnswerRepository, cardRepo *mocks.FlashcardRepository) {
				sessionRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), sessionID).
					Return(nil, model.ErrNotFound).Once()
			},
			wantErr: model.ErrNotFound,
		},
		{
			name: "異常系: セッションの出題対象外のカード",
			req:  &model.RecordAnswerRequest{FlashcardID: uuid.New().String(), IsCorrect: boolPtr(true)},
			setupMock: func(sessionRepo *mocks.SessionRepository, progRepo *mocks.ProgressRepository, answerRepo *mocks.AnswerRepository, cardRepo *mocks.FlashcardRepository) {
				sessionRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), sessionID).
					Return(activeSession(), nil).Once()
			},
			wantErr: model.ErrNotFound,
		},
		{
			name: "異常系: is_correct も answer_text も未指定",
			req:  &model.RecordAnswerRequest{FlashcardID: flashcardID.String()},
			setupMock: func(sessionRepo *mocks.SessionRepository, progRepo *mocks.ProgressRepository, answerRepo *mocks.AnswerRepository, cardRepo *mocks.FlashcardRepository) {
				sessionRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), sessionID).
					Return(activeSession(), nil).Once()
			},
			wantErr: model.ErrInvalidInput,
		},
		{
			name: "異常系: 回答時間が負",
			req:  &model.RecordAnswerRequest{FlashcardID: flashcardID.String(), IsCorrect: boolPtr(true), TimeSpentMs: intPtr(-1)},
			setupMock: func(sessionRepo *mocks.SessionRepository, progRepo *mocks.ProgressRepository, answerRepo *mocks.AnswerRepository, cardRepo *mocks.FlashcardRepository) {
				sessionRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), sessionID).
					Return(activeSession(), nil).Once()
			},
			wantErr: model.ErrInvalidInput,
		},
		{
			name: "異常系: 回答記録のDBエラーで進捗も更新されない",
			req:  &model.RecordAnswerRequest{FlashcardID: flashcardID.String(), IsCorrect: boolPtr(true)},
			setupMock: func(sessionRepo *mocks.SessionRepository, progRepo *mocks.ProgressRepository, answerRepo *mocks.AnswerRepository, cardRepo *mocks.FlashcardRepository) {
				sessionRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), sessionID).
					Return(activeSession(), nil).Once()
				answerRepo.On("Create", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.Answer")).
					Return(errors.New("db error")).Once()
				// トランザクションが巻き戻るため進捗リポジトリは呼ばれない
			},
			wantCode: "INTERNAL_SERVER_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDBStudy()
			sessionRepo := new(mocks.SessionRepository)
			progRepo := new(mocks.ProgressRepository)
			answerRepo := new(mocks.AnswerRepository)
			cardRepo := new(mocks.FlashcardRepository)
			svc := NewStudyService(db, sessionRepo, progRepo, answerRepo, cardRepo, testConfigStudy())

			tt.setupMock(sessionRepo, progRepo, answerRepo, cardRepo)

			resp, err := svc.RecordAnswer(ctx, tenantID, sessionID, tt.req)

			if tt.wantErr != nil || tt.wantCode != "" {
				require.Error(t, err)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
				if tt.wantCode != "" {
					assertAppErrorCode(t, err, tt.wantCode)
				}
				assert.Nil(t, resp)
			} else {
				require.NoError(t, err)
				require.NotNil(t, resp)
				if tt.check != nil {
					tt.check(t, resp)
				}
			}
			sessionRepo.AssertExpectations(t)
			progRepo.AssertExpectations(t)
			answerRepo.AssertExpectations(t)
			cardRepo.AssertExpectations(t)
		})
	}
}

// --- Test RecordAnswer (answer_text による正誤判定) ---
func Test_studyService_RecordAnswer_AnswerText(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	sessionID := uuid.New()
	flashcardID := uuid.New()
	card := &model.Flashcard{FlashcardID: flashcardID, Front: "hello", Back: "hello"}

	sessionWithMode := func(mode model.StudyMode) *model.StudySession {
		return &model.StudySession{
			SessionID:  sessionID,
			TenantID:   tenantID,
			Mode:       mode,
			TotalCards: 1,
			CardOrder:  model.CardOrder{flashcardID},
		}
	}

	tests := []struct {
		name        string
		mode        model.StudyMode
		answerText  string
		wantCorrect bool
	}{
		{
			name:        "正常系: writingモードは正規化と類似度で判定 (句読点と大文字を無視)",
			mode:        model.ModeWriting,
			answerText:  "Hello!",
			wantCorrect: true,
		},
		{
			name:        "正常系: writingモードでも閾値未満なら不正解",
			mode:        model.ModeWriting,
			answerText:  "goodbye",
			wantCorrect: false,
		},
		{
			name:        "正常系: writing以外のモードは完全一致のみ正解",
			mode:        model.ModeQuiz,
			answerText:  "Hello!",
			wantCorrect: false,
		},
		{
			name:        "正常系: writing以外のモードの完全一致",
			mode:        model.ModeQuiz,
			answerText:  "hello",
			wantCorrect: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDBStudy()
			sessionRepo := new(mocks.SessionRepository)
			progRepo := new(mocks.ProgressRepository)
			answerRepo := new(mocks.AnswerRepository)
			cardRepo := new(mocks.FlashcardRepository)
			svc := NewStudyService(db, sessionRepo, progRepo, answerRepo, cardRepo, testConfigStudy())

			sessionRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), sessionID).
				Return(sessionWithMode(tt.mode), nil).Once()
			cardRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), flashcardID).
				Return(card, nil).Once()
			answerRepo.On("Create", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.Answer")).
				Run(func(args mock.Arguments) {
					answer := args.Get(2).(*model.Answer)
					assert.Equal(t, tt.wantCorrect, answer.IsCorrect)
				}).Return(nil).Once()
			progRepo.On("FindByFlashcard", ctx, mock.AnythingOfType("*gorm.DB"), tenantID, flashcardID).
				Return(nil, model.ErrNotFound).Once()
			progRepo.On("Create", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.CardProgress")).
				Return(nil).Once()

			req := &model.RecordAnswerRequest{FlashcardID: flashcardID.String(), AnswerText: strPtr(tt.answerText)}
			resp, err := svc.RecordAnswer(ctx, tenantID, sessionID, req)

			require.NoError(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, tt.wantCorrect, resp.IsCorrect)
			sessionRepo.AssertExpectations(t)
			progRepo.AssertExpectations(t)
			answerRepo.AssertExpectations(t)
			cardRepo.AssertExpectations(t)
		})
	}
}

// --- Test UpdateSnapshot ---
func Test_studyService_UpdateSnapshot(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	sessionID := uuid.New()

	activeSession := func() *model.StudySession {
		return &model.StudySession{SessionID: sessionID, TenantID: tenantID, TotalCards: 5}
	}

	tests := []struct {
		name      string
		req       *model.UpdateSnapshotRequest
		setupMock func(m *mocks.SessionRepository)
		wantErr   error
	}{
		{
			name: "正常系: スナップショットと現在位置を丸ごと置換する",
			req:  &model.UpdateSnapshotRequest{CurrentIndex: intPtr(3), Snapshot: model.Snapshot(`{"flipped":true}`)},
			setupMock: func(m *mocks.SessionRepository) {
				m.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), sessionID).
					Return(activeSession(), nil).Once()
				m.On("UpdateSnapshot", ctx, mock.AnythingOfType("*gorm.DB"), sessionID, model.Snapshot(`{"flipped":true}`), 3).
					Return(nil).Once()
			},
			wantErr: nil,
		},
		{
			name: "正常系: 現在位置はカード総数と同値まで許容 (全カード消化後)",
			req:  &model.UpdateSnapshotRequest{CurrentIndex: intPtr(5)},
			setupMock: func(m *mocks.SessionRepository) {
				m.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), sessionID).
					Return(activeSession(), nil).Once()
				m.On("UpdateSnapshot", ctx, mock.AnythingOfType("*gorm.DB"), sessionID, model.Snapshot(nil), 5).
					Return(nil).Once()
			},
			wantErr: nil,
		},
		{
			name: "異常系: 現在位置がカード総数を超える",
			req:  &model.UpdateSnapshotRequest{CurrentIndex: intPtr(6)},
			setupMock: func(m *mocks.SessionRepository) {
				m.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), sessionID).
					Return(activeSession(), nil).Once()
			},
			wantErr: model.ErrInvalidInput,
		},
		{
			name: "異常系: 完了済みセッションは更新できない",
			req:  &model.UpdateSnapshotRequest{CurrentIndex: intPtr(1)},
			setupMock: func(m *mocks.SessionRepository) {
				done := activeSession()
				done.Completed = true
				m.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), sessionID).
					Return(done, nil).Once()
			},
			wantErr: model.ErrAlreadyCompleted,
		},
		{
			name: "異常系: 事前チェック後に完了された競合ケース",
			req:  &model.UpdateSnapshotRequest{CurrentIndex: intPtr(1)},
			setupMock: func(m *mocks.SessionRepository) {
				m.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), sessionID).
					Return(activeSession(), nil).Once()
				m.On("UpdateSnapshot", ctx, mock.AnythingOfType("*gorm.DB"), sessionID, model.Snapshot(nil), 1).
					Return(model.ErrAlreadyCompleted).Once()
			},
			wantErr: model.ErrAlreadyCompleted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDBStudy()
			sessionRepo := new(mocks.SessionRepository)
			svc := NewStudyService(db, sessionRepo, new(mocks.ProgressRepository), new(mocks.AnswerRepository), new(mocks.FlashcardRepository), testConfigStudy())

			tt.setupMock(sessionRepo)

			err := svc.UpdateSnapshot(ctx, tenantID, sessionID, tt.req)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			sessionRepo.AssertExpectations(t)
		})
	}
}

// --- Test CompleteSession ---
func Test_studyService_CompleteSession(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	sessionID := uuid.New()

	t.Run("正常系: スコア付きで完了し確定後の状態を返す", func(t *testing.T) {
		db := setupTestDBStudy()
		sessionRepo := new(mocks.SessionRepository)
		svc := NewStudyService(db, sessionRepo, new(mocks.ProgressRepository), new(mocks.AnswerRepository), new(mocks.FlashcardRepository), testConfigStudy())

		score := floatPtr(87.5)
		now := time.Now()
		completed := &model.StudySession{
			SessionID: sessionID, TenantID: tenantID,
			Completed: true, Score: score, CompletedAt: &now,
		}

		// 1回目: 事前チェック (アクティブ)、2回目: 確定後の読み直し
		sessionRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), sessionID).
			Return(&model.StudySession{SessionID: sessionID, TenantID: tenantID}, nil).Once()
		sessionRepo.On("Complete", ctx, mock.AnythingOfType("*gorm.DB"), sessionID, score, mock.AnythingOfType("time.Time")).
			Return(nil).Once()
		sessionRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), sessionID).
			Return(completed, nil).Once()

		session, err := svc.CompleteSession(ctx, tenantID, sessionID, &model.CompleteSessionRequest{Score: score})

		require.NoError(t, err)
		require.NotNil(t, session)
		assert.True(t, session.Completed)
		require.NotNil(t, session.Score)
		assert.Equal(t, 87.5, *session.Score)
		assert.NotNil(t, session.CompletedAt)
		sessionRepo.AssertExpectations(t)
	})

	t.Run("異常系: 二重完了は拒否される", func(t *testing.T) {
		db := setupTestDBStudy()
		sessionRepo := new(mocks.SessionRepository)
		svc := NewStudyService(db, sessionRepo, new(mocks.ProgressRepository), new(mocks.AnswerRepository), new(mocks.FlashcardRepository), testConfigStudy())

		sessionRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), sessionID).
			Return(&model.StudySession{SessionID: sessionID, TenantID: tenantID, Completed: true}, nil).Once()

		session, err := svc.CompleteSession(ctx, tenantID, sessionID, &model.CompleteSessionRequest{})

		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrAlreadyCompleted)
		assert.Nil(t, session)
		sessionRepo.AssertExpectations(t)
	})

	t.Run("異常系: 事前チェック後にレースで完了されたケース", func(t *testing.T) {
		db := setupTestDBStudy()
		sessionRepo := new(mocks.SessionRepository)
		svc := NewStudyService(db, sessionRepo, new(mocks.ProgressRepository), new(mocks.AnswerRepository), new(mocks.FlashcardRepository), testConfigStudy())

		sessionRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), sessionID).
			Return(&model.StudySession{SessionID: sessionID, TenantID: tenantID}, nil).Once()
		sessionRepo.On("Complete", ctx, mock.AnythingOfType("*gorm.DB"), sessionID, (*float64)(nil), mock.AnythingOfType("time.Time")).
			Return(model.ErrAlreadyCompleted).Once()

		session, err := svc.CompleteSession(ctx, tenantID, sessionID, &model.CompleteSessionRequest{})

		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrAlreadyCompleted)
		assert.Nil(t, session)
		sessionRepo.AssertExpectations(t)
	})
}

// --- Test ListDueCards ---
func Test_studyService_ListDueCards(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	cardID1 := uuid.New()
	cardID2 := uuid.New()

	mockProgresses := []*model.CardProgress{
		{
			ProgressID: uuid.New(), TenantID: tenantID, FlashcardID: cardID1,
			EaseFactor: 2.5, IntervalDays: 1, Repetitions: 1, NextReviewAt: time.Now().Add(-time.Hour),
			Flashcard: &model.Flashcard{FlashcardID: cardID1, Front: "apple", Back: "りんご"},
		},
		{
			ProgressID: uuid.New(), TenantID: tenantID, FlashcardID: cardID2,
			EaseFactor: 2.6, IntervalDays: 6, Repetitions: 2, NextReviewAt: time.Now().Add(-time.Minute),
			Flashcard: &model.Flashcard{FlashcardID: cardID2, Front: "grape", Back: "ぶどう"},
		},
		// Flashcardがnilのケース (レスポンスからは除外される)
		{
			ProgressID: uuid.New(), TenantID: tenantID, FlashcardID: uuid.New(),
			EaseFactor: 2.5, IntervalDays: 1, Repetitions: 1, NextReviewAt: time.Now(),
			Flashcard: nil,
		},
	}

	tests := []struct {
		name       string
		setupMock  func(m *mocks.ProgressRepository, cfg *config.Config)
		wantErr    error
		wantCode   string
		wantCount  int
		wantFronts []string
	}{
		{
			name: "正常系: 復習期限が来たカードを取得",
			setupMock: func(m *mocks.ProgressRepository, cfg *config.Config) {
				m.On("FindDueByTenant", ctx, mock.AnythingOfType("*gorm.DB"), tenantID, mock.AnythingOfType("time.Time"), cfg.App.DueLimit).
					Return(mockProgresses, nil).Once()
			},
			wantErr:    nil,
			wantCount:  2, // Flashcardがnilのものはスキップ
			wantFronts: []string{"apple", "grape"},
		},
		{
			name: "正常系: 期限到来のカードが0件",
			setupMock: func(m *mocks.ProgressRepository, cfg *config.Config) {
				m.On("FindDueByTenant", ctx, mock.AnythingOfType("*gorm.DB"), tenantID, mock.AnythingOfType("time.Time"), cfg.App.DueLimit).
					Return([]*model.CardProgress{}, nil).Once()
			},
			wantErr:   nil,
			wantCount: 0,
		},
		{
			name: "異常系: リポジトリでDBエラー",
			setupMock: func(m *mocks.ProgressRepository, cfg *config.Config) {
				m.On("FindDueByTenant", ctx, mock.AnythingOfType("*gorm.DB"), tenantID, mock.AnythingOfType("time.Time"), cfg.App.DueLimit).
					Return(nil, errors.New("db error")).Once()
			},
			wantCode: "INTERNAL_SERVER_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDBStudy()
			progRepo := new(mocks.ProgressRepository)
			cfg := testConfigStudy()
			svc := NewStudyService(db, new(mocks.SessionRepository), progRepo, new(mocks.AnswerRepository), new(mocks.FlashcardRepository), cfg)

			tt.setupMock(progRepo, cfg)

			cards, err := svc.ListDueCards(ctx, tenantID)

			if tt.wantErr != nil || tt.wantCode != "" {
				require.Error(t, err)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
				if tt.wantCode != "" {
					assertAppErrorCode(t, err, tt.wantCode)
				}
				assert.Nil(t, cards)
			} else {
				require.NoError(t, err)
				require.Len(t, cards, tt.wantCount)
				for i, front := range tt.wantFronts {
					assert.Equal(t, front, cards[i].Front)
				}
			}
			progRepo.AssertExpectations(t)
		})
	}
}

package service

import (
	"context"

	"github.com/Simi129/pinterest-backend/internal/pinterest"
)

// BoardService proxies board CRUD to the Pinterest API using the caller's
// stored credential. No board state is kept locally.
type BoardService struct {
	connSvc   *ConnectionService
	pinClient *pinterest.Client
}

func NewBoardService(connSvc *ConnectionService, pinClient *pinterest.Client) *BoardService {
	return &BoardService{
		connSvc:   connSvc,
		pinClient: pinClient,
	}
}

func (s *BoardService) List(ctx context.Context, userID string) ([]pinterest.Board, error) {
	conn, err := s.connSvc.Fresh(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.pinClient.ListBoards(ctx, conn.AccessToken)
}

func (s *BoardService) Create(ctx context.Context, userID string, params pinterest.CreateBoardParams) (*pinterest.Board, error) {
	conn, err := s.connSvc.Fresh(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.pinClient.CreateBoard(ctx, conn.AccessToken, params)
}

func (s *BoardService) Update(ctx context.Context, userID, boardID string, params pinterest.UpdateBoardParams) (*pinterest.Board, error) {
	conn, err := s.connSvc.Fresh(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.pinClient.UpdateBoard(ctx, conn.AccessToken, boardID, params)
}

func (s *BoardService) Delete(ctx context.Context, userID, boardID string) error {
	conn, err := s.connSvc.Fresh(ctx, userID)
	if err != nil {
		return err
	}
	return s.pinClient.DeleteBoard(ctx, conn.AccessToken, boardID)
}

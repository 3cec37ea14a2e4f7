package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Codeveil-Studio/QResolve-app/internal/domain/entity"
	repo "github.com/Codeveil-Studio/QResolve-app/internal/domain/repository"
)

// QRPublisher renders an asset's report link and optionally stores the image.
type QRPublisher interface {
	Render(a *entity.Asset) ([]byte, error)
	Publish(ctx context.Context, a *entity.Asset) (string, error)
	Unpublish(ctx context.Context, a *entity.Asset) error
}

// AssetInput is a partial update; nil fields are left unchanged.
type AssetInput struct {
	Name         *string
	Description  *string
	Type         *string
	Location     *string
	Status       *entity.AssetStatus
	SerialNumber *string
	PurchaseDate *time.Time
	PurchaseCost *float64
}

func (in AssetInput) apply(a *entity.Asset) {
	if in.Name != nil {
		a.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		a.Description = in.Description
	}
	if in.Type != nil {
		a.Type = in.Type
	}
	if in.Location != nil {
		a.Location = in.Location
	}
	if in.Status != nil {
		a.Status = *in.Status
	}
	if in.SerialNumber != nil {
		a.SerialNumber = in.SerialNumber
	}
	if in.PurchaseDate != nil {
		a.PurchaseDate = in.PurchaseDate
	}
	if in.PurchaseCost != nil {
		a.PurchaseCost = in.PurchaseCost
	}
}

type AssetService struct {
	Assets repo.AssetRepository
	Issues repo.IssueRepository
	Index  repo.AssetIndex
	QR     QRPublisher
	Logger *logrus.Logger
}

func assetErr(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrAssetNotFound
	}
	return err
}

func (s *AssetService) List(ctx context.Context, orgID string) ([]entity.Asset, error) {
	return s.Assets.List(ctx, orgID)
}

func (s *AssetService) Get(ctx context.Context, orgID, id string) (*entity.Asset, error) {
	a, err := s.Assets.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, assetErr(err)
	}
	return a, nil
}

func (s *AssetService) Create(ctx context.Context, st *entity.SessionState, in AssetInput) (*entity.Asset, error) {
	if st.OrgID() == "" {
		return nil, ErrAuthRequired
	}
	a := &entity.Asset{OrgID: st.OrgID(), Status: entity.AssetActive, CreatedBy: st.UserID()}
	in.apply(a)
	if err := s.Assets.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create asset: %w", err)
	}
	s.index(ctx, a)
	return a, nil
}

func (s *AssetService) Update(ctx context.Context, orgID, id string, in AssetInput) (*entity.Asset, error) {
	a, err := s.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	in.apply(a)
	if err := s.Assets.Update(ctx, a); err != nil {
		return nil, assetErr(err)
	}
	s.index(ctx, a)
	return a, nil
}

func (s *AssetService) Delete(ctx context.Context, orgID, id string) error {
	if err := s.Assets.Delete(ctx, orgID, id); err != nil {
		return assetErr(err)
	}
	if s.Index != nil {
		if err := s.Index.Remove(ctx, id); err != nil {
			s.warn(err, id, "remove asset from index failed")
		}
	}
	if s.QR != nil {
		if err := s.QR.Unpublish(ctx, &entity.Asset{ID: id, OrgID: orgID}); err != nil {
			s.warn(err, id, "remove qr export failed")
		}
	}
	return nil
}

// IssuesFor lists the issues filed against one asset of the tenant.
func (s *AssetService) IssuesFor(ctx context.Context, orgID, id string) ([]entity.Issue, error) {
	if _, err := s.Get(ctx, orgID, id); err != nil {
		return nil, err
	}
	return s.Issues.List(ctx, orgID, entity.IssueFilter{AssetID: id})
}

func (s *AssetService) Search(ctx context.Context, orgID, q string, size int) ([]map[string]any, error) {
	q = strings.TrimSpace(q)
	if s.Index == nil || q == "" {
		return []map[string]any{}, nil
	}
	return s.Index.Search(ctx, orgID, q, size)
}

// QRCode renders the PNG for an asset of the tenant.
func (s *AssetService) QRCode(ctx context.Context, orgID, id string) ([]byte, error) {
	a, err := s.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	return s.QR.Render(a)
}

// PublishQRCode uploads the PNG and records its URL on the asset.
func (s *AssetService) PublishQRCode(ctx context.Context, orgID, id string) (*entity.Asset, error) {
	a, err := s.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	url, err := s.QR.Publish(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("publish qr code: %w", err)
	}
	if err := s.Assets.SetQRCode(ctx, orgID, id, url); err != nil {
		return nil, assetErr(err)
	}
	a.QRCode = &url
	return a, nil
}

func (s *AssetService) index(ctx context.Context, a *entity.Asset) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, a); err != nil {
		s.warn(err, a.ID, "index asset failed")
	}
}

func (s *AssetService) warn(err error, assetID, msg string) {
	if s.Logger != nil {
		s.Logger.WithError(err).WithField("asset_id", assetID).Warn(msg)
	}
}

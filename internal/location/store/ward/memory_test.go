package ward

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"civreg/internal/location/models"
	id "civreg/pkg/domain"
	"civreg/pkg/platform/sentinel"
)

type WardStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestWardStoreSuite(t *testing.T) {
	suite.Run(t, new(WardStoreSuite))
}

func (s *WardStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *WardStoreSuite) newWard(name, code string) *models.Ward {
	w, err := models.NewWard(id.NewWardID(), name, code, time.Now().UTC())
	s.Require().NoError(err)
	return w
}

func (s *WardStoreSuite) TestCreateIfCodeAvailable() {
	s.Run("creates ward when code is free", func() {
		w := s.newWard("Kinondoni", "KIN-01")
		s.Require().NoError(s.store.CreateIfCodeAvailable(s.ctx, w))

		found, err := s.store.FindByID(s.ctx, w.ID)
		s.Require().NoError(err)
		s.Equal("Kinondoni", found.Name)
		s.Equal(models.StatusActive, found.Status)
	})

	s.Run("rejects duplicate code case-insensitively", func() {
		first := s.newWard("Ilala", "ILA-01")
		s.Require().NoError(s.store.CreateIfCodeAvailable(s.ctx, first))

		dup := s.newWard("Other", "ila-01")
		err := s.store.CreateIfCodeAvailable(s.ctx, dup)
		s.Require().ErrorIs(err, sentinel.ErrAlreadyUsed)
	})

	s.Run("stores a copy, not the caller's pointer", func() {
		w := s.newWard("Temeke", "TEM-01")
		s.Require().NoError(s.store.CreateIfCodeAvailable(s.ctx, w))
		w.Name = "mutated"

		found, err := s.store.FindByID(s.ctx, w.ID)
		s.Require().NoError(err)
		s.Equal("Temeke", found.Name)
	})
}

func (s *WardStoreSuite) TestFindByID() {
	s.Run("returns not found for unknown id", func() {
		_, err := s.store.FindByID(s.ctx, id.NewWardID())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *WardStoreSuite) TestList() {
	s.Run("orders wards by code", func() {
		for _, code := range []string{"C-03", "A-01", "B-02"} {
			s.Require().NoError(s.store.CreateIfCodeAvailable(s.ctx, s.newWard("Ward "+code, code)))
		}

		wards, err := s.store.List(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(wards, 3)
		s.Equal("A-01", wards[0].Code)
		s.Equal("B-02", wards[1].Code)
		s.Equal("C-03", wards[2].Code)
	})
}

func (s *WardStoreSuite) TestUpdate() {
	s.Run("updates fields and frees the old code", func() {
		w := s.newWard("Ubungo", "UBU-01")
		s.Require().NoError(s.store.CreateIfCodeAvailable(s.ctx, w))

		w.Code = "UBU-02"
		w.Status = models.StatusInactive
		s.Require().NoError(s.store.Update(s.ctx, w))

		reuse := s.newWard("New Ward", "UBU-01")
		s.Require().NoError(s.store.CreateIfCodeAvailable(s.ctx, reuse))

		found, err := s.store.FindByID(s.ctx, w.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusInactive, found.Status)
	})

	s.Run("returns not found for unknown ward", func() {
		err := s.store.Update(s.ctx, s.newWard("Ghost", "GHO-01"))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *WardStoreSuite) TestDelete() {
	s.Run("removes ward and frees its code", func() {
		w := s.newWard("Segerea", "SEG-01")
		s.Require().NoError(s.store.CreateIfCodeAvailable(s.ctx, w))
		s.Require().NoError(s.store.Delete(s.ctx, w.ID))

		_, err := s.store.FindByID(s.ctx, w.ID)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)

		s.Require().NoError(s.store.CreateIfCodeAvailable(s.ctx, s.newWard("Again", "SEG-01")))
	})

	s.Run("returns not found for unknown ward", func() {
		s.Require().ErrorIs(s.store.Delete(s.ctx, id.NewWardID()), sentinel.ErrNotFound)
	})
}

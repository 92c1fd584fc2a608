package hierarchy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"civreg/internal/location/models"
	"civreg/internal/location/store/village"
	"civreg/internal/location/store/ward"
	id "civreg/pkg/domain"
	dErrors "civreg/pkg/domain-errors"
)

type HierarchySuite struct {
	suite.Suite
	ctx       context.Context
	hierarchy *Hierarchy
	wards     *ward.InMemory
	villages  *village.InMemory

	wardA    *models.Ward
	wardB    *models.Ward
	villageA *models.Village
}

func TestHierarchySuite(t *testing.T) {
	suite.Run(t, new(HierarchySuite))
}

func (s *HierarchySuite) SetupTest() {
	s.ctx = context.Background()
	s.wards = ward.NewInMemory()
	s.villages = village.NewInMemory()
	s.hierarchy = New(s.wards, s.villages)

	now := time.Now().UTC()
	var err error
	s.wardA, err = models.NewWard(id.NewWardID(), "Ward A", "WA-01", now)
	s.Require().NoError(err)
	s.wardB, err = models.NewWard(id.NewWardID(), "Ward B", "WB-01", now)
	s.Require().NoError(err)
	s.Require().NoError(s.wards.CreateIfCodeAvailable(s.ctx, s.wardA))
	s.Require().NoError(s.wards.CreateIfCodeAvailable(s.ctx, s.wardB))

	s.villageA, err = models.NewVillage(id.NewVillageID(), "Village A", "VA-01", s.wardA.ID, now)
	s.Require().NoError(err)
	s.Require().NoError(s.villages.CreateIfCodeAvailable(s.ctx, s.villageA))
}

func (s *HierarchySuite) TestVillagesOfWard() {
	s.Run("lists villages of a ward", func() {
		villages, err := s.hierarchy.VillagesOfWard(s.ctx, s.wardA.ID)
		s.Require().NoError(err)
		s.Require().Len(villages, 1)
		s.Equal(s.villageA.ID, villages[0].ID)
	})

	s.Run("ward without villages yields empty list", func() {
		villages, err := s.hierarchy.VillagesOfWard(s.ctx, s.wardB.ID)
		s.Require().NoError(err)
		s.Empty(villages)
	})

	s.Run("unknown ward is not found", func() {
		_, err := s.hierarchy.VillagesOfWard(s.ctx, id.NewWardID())
		s.Require().True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *HierarchySuite) TestWardOf() {
	s.Run("resolves the containing ward", func() {
		wardID, err := s.hierarchy.WardOf(s.ctx, s.villageA.ID)
		s.Require().NoError(err)
		s.Equal(s.wardA.ID, wardID)
	})

	s.Run("unknown village is not found", func() {
		_, err := s.hierarchy.WardOf(s.ctx, id.NewVillageID())
		s.Require().True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *HierarchySuite) TestVillageBelongsToWard() {
	s.Run("true for the containing ward", func() {
		ok, err := s.hierarchy.VillageBelongsToWard(s.ctx, s.villageA.ID, s.wardA.ID)
		s.Require().NoError(err)
		s.True(ok)
	})

	s.Run("false for another ward", func() {
		ok, err := s.hierarchy.VillageBelongsToWard(s.ctx, s.villageA.ID, s.wardB.ID)
		s.Require().NoError(err)
		s.False(ok)
	})

	s.Run("false for unknown village", func() {
		ok, err := s.hierarchy.VillageBelongsToWard(s.ctx, id.NewVillageID(), s.wardA.ID)
		s.Require().NoError(err)
		s.False(ok)
	})
}

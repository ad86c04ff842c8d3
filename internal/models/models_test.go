package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestFacetValidity(t *testing.T) {
	assert.True(t, CourseDinner.Valid())
	assert.False(t, CourseType("dinner").Valid(), "choices are case sensitive")
	assert.True(t, RecipeEntree.Valid())
	assert.False(t, RecipeType("Casserole").Valid())
	assert.True(t, ProteinNone.Valid())
	assert.False(t, Protein("").Valid())
	assert.True(t, StyleMediterranean.Valid())
	assert.False(t, EthnicStyle("Martian").Valid())
	assert.False(t, TimeBucket("soon").Valid())
}

func TestTimeBucketContains(t *testing.T) {
	tests := []struct {
		bucket TimeBucket
		in     []int
		out    []int
	}{
		{TimeUnder30, []int{0, 29, 30}, []int{31}},
		{Time30To60, []int{31, 60}, []int{30, 61}},
		{Time60To120, []int{61, 120}, []int{60, 121}},
		{TimeOver120, []int{121, 1000}, []int{120}},
	}
	for _, tt := range tests {
		t.Run(string(tt.bucket), func(t *testing.T) {
			for _, total := range tt.in {
				assert.True(t, tt.bucket.Contains(total), "%d", total)
			}
			for _, total := range tt.out {
				assert.False(t, tt.bucket.Contains(total), "%d", total)
			}
		})
	}
	assert.False(t, TimeBucket("bogus").Contains(10))
}

func TestTimeBucketsCoverEveryTotal(t *testing.T) {
	for total := 0; total <= 300; total++ {
		matches := 0
		for _, b := range TimeBuckets {
			if b.Contains(total) {
				matches++
			}
		}
		assert.Equal(t, 1, matches, "total %d", total)
	}
}

func TestDisplayName(t *testing.T) {
	active := &User{FirstName: "Julia", LastName: "Child"}
	assert.Equal(t, "Julia Child", DisplayName(active))
	assert.Equal(t, AnonymousUser, DisplayName(nil))
	assert.Equal(t, AnonymousUser, DisplayName(&User{}))

	gone := &User{FirstName: "Julia", LastName: "Child", DeletedAt: gorm.DeletedAt{Time: time.Now(), Valid: true}}
	assert.Equal(t, AnonymousUser, DisplayName(gone))
}

func TestRecipeHelpers(t *testing.T) {
	owner := uuid.New()
	r := &Recipe{PrepTime: 15, CookTime: 45, CreatorID: &owner}
	assert.Equal(t, 60, r.TotalTime())
	assert.True(t, r.OwnedBy(owner))
	assert.False(t, r.OwnedBy(uuid.New()))
	assert.Equal(t, AnonymousUser, r.CreatorName())
	assert.False(t, r.Deleted())

	orphan := &Recipe{}
	assert.False(t, orphan.OwnedBy(uuid.Nil))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "cook@example.com", NormalizeEmail("  Cook@Example.COM "))
}

func TestPasswordResetTokenUsable(t *testing.T) {
	now := time.Now()
	token := &PasswordResetToken{ExpiresAt: now.Add(time.Hour)}
	assert.True(t, token.Usable(now))
	assert.False(t, token.Usable(now.Add(time.Hour)))

	token.Used = true
	assert.False(t, token.Usable(now))
}

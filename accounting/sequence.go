package accounting

import (
	"gorm.io/gorm"

	"github.com/genesis-erp/ledger/models"
)

// SequenceAllocator hands out strictly increasing entry numbers. Next
// must run inside the transaction that posts the entry: the counter-row
// UPDATE takes a row lock, so concurrent posters serialize and no
// number is ever duplicated.
type SequenceAllocator struct {
	name string
}

func NewSequenceAllocator() *SequenceAllocator {
	return &SequenceAllocator{name: models.EntryNumberSequence}
}

func (s *SequenceAllocator) Next(tx *gorm.DB) (int64, error) {
	result := tx.Model(&models.Sequence{}).
		Where("name = ?", s.name).
		Update("value", gorm.Expr("value + 1"))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, notFound("sequence", s.name)
	}

	var seq models.Sequence
	if err := tx.First(&seq, "name = ?", s.name).Error; err != nil {
		return 0, err
	}
	return seq.Value, nil
}

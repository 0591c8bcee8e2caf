package import_feature

import "testing"

func TestAggregatorCounts(t *testing.T) {
	agg := NewAggregator(KindClient)

	agg.Record(RowCreated)
	agg.Record(RowCreated)
	agg.Record(RowUpdated)
	agg.Record(RowSkipped)
	agg.Fail(&ImportError{Row: 5, Category: CategoryMissingRequired, Message: "x"})

	result := agg.Result()

	if result.Total != 5 {
		t.Errorf("total = %d, want 5", result.Total)
	}
	if result.Created != 2 || result.Updated != 1 || result.Skipped != 1 || result.Failed != 1 {
		t.Errorf("counts = %d/%d/%d/%d", result.Created, result.Updated, result.Skipped, result.Failed)
	}
	if sum := result.Created + result.Updated + result.Skipped + result.Failed; sum != result.Total {
		t.Errorf("counts sum to %d, total is %d", sum, result.Total)
	}
}

func TestAggregatorMultipleErrorsOneRow(t *testing.T) {
	agg := NewAggregator(KindClient)

	agg.Fail(
		&ImportError{Row: 2, Column: "email", Category: CategoryInvalidType, Message: "a"},
		&ImportError{Row: 2, Column: "status", Category: CategoryInvalidEnumValue, Message: "b"},
	)

	result := agg.Result()
	if result.Failed != 1 {
		t.Errorf("failed = %d, want 1 (one row)", result.Failed)
	}
	if len(result.Errors) != 2 {
		t.Errorf("errors = %d, want 2", len(result.Errors))
	}
}

func TestAggregatorPreservesErrorOrder(t *testing.T) {
	agg := NewAggregator(KindClient)

	agg.Fail(&ImportError{Row: 3, Category: CategoryInvalidType, Message: "first"})
	agg.Record(RowCreated)
	agg.Fail(&ImportError{Row: 8, Category: CategoryDuplicateInFile, Message: "second"})

	result := agg.Result()
	if len(result.Errors) != 2 {
		t.Fatalf("errors = %d, want 2", len(result.Errors))
	}
	if result.Errors[0].Row != 3 || result.Errors[1].Row != 8 {
		t.Errorf("error order = [%d, %d], want [3, 8]", result.Errors[0].Row, result.Errors[1].Row)
	}
}

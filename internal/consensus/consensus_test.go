package consensus_test

import (
	"testing"
	"time"

	"tipmap-service/internal/consensus"
	"tipmap-service/internal/model"

	"gorm.io/datatypes"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func report(id string, minutesAfter int, practice model.TipPractice) model.Report {
	return model.Report{
		ID:          id,
		BusinessID:  "biz_test",
		TipPractice: practice,
		CreatedAt:   baseTime.Add(time.Duration(minutesAfter) * time.Minute),
	}
}

func boolPtr(v bool) *bool { return &v }
func intPtr(v int) *int    { return &v }

func TestAggregateEmpty(t *testing.T) {
	c := consensus.Aggregate(nil)

	if c.ReportCount != 0 {
		t.Errorf("Expected report count 0, got %d", c.ReportCount)
	}
	if c.TipPractice != nil {
		t.Errorf("Expected unknown tip practice, got %v", *c.TipPractice)
	}
	if c.TipsGoToStaff != nil {
		t.Errorf("Expected unknown staff verdict, got %v", *c.TipsGoToStaff)
	}
	if len(c.SuggestedTips) != 0 {
		t.Errorf("Expected empty suggested tips, got %v", c.SuggestedTips)
	}
	if c.ServiceChargePercentage != nil {
		t.Errorf("Expected no service charge, got %v", *c.ServiceChargePercentage)
	}
}

func TestAggregateMajorityPractice(t *testing.T) {
	reports := []model.Report{
		report("rpt_1", 0, model.TipPracticeNoTipping),
		report("rpt_2", 1, model.TipPracticeTipRequested),
		report("rpt_3", 2, model.TipPracticeTipRequested),
	}

	c := consensus.Aggregate(reports)

	if c.ReportCount != 3 {
		t.Errorf("Expected report count 3, got %d", c.ReportCount)
	}
	if c.TipPractice == nil || *c.TipPractice != model.TipPracticeTipRequested {
		t.Errorf("Expected tip_requested, got %v", c.TipPractice)
	}
}

func TestAggregateTieBreaksToMostRecent(t *testing.T) {
	reports := []model.Report{
		report("rpt_1", 0, model.TipPracticeNoTipping),
		report("rpt_2", 1, model.TipPracticeTipRequested),
	}

	c := consensus.Aggregate(reports)

	if c.TipPractice == nil || *c.TipPractice != model.TipPracticeTipRequested {
		t.Errorf("Expected tie to resolve to tip_requested, got %v", c.TipPractice)
	}
}

func TestAggregateSameTimestampTieBreaksOnID(t *testing.T) {
	a := report("rpt_a", 0, model.TipPracticeNoTipping)
	b := report("rpt_b", 0, model.TipPracticeServiceCharge)

	// Arrival order must not matter: (created_at, id) is the total order.
	first := consensus.Aggregate([]model.Report{a, b})
	second := consensus.Aggregate([]model.Report{b, a})

	if first.TipPractice == nil || *first.TipPractice != model.TipPracticeServiceCharge {
		t.Errorf("Expected service_charge, got %v", first.TipPractice)
	}
	if second.TipPractice == nil || *second.TipPractice != *first.TipPractice {
		t.Errorf("Expected order-independent result, got %v and %v", first.TipPractice, second.TipPractice)
	}
}

func TestAggregateSuggestedTipsLatestNonEmptyWins(t *testing.T) {
	r1 := report("rpt_1", 0, model.TipPracticeTipRequested)
	r1.SuggestedTips = datatypes.JSONSlice[int]{10, 15}
	r2 := report("rpt_2", 1, model.TipPracticeTipRequested)
	// r2 supplied no list, so it must not overwrite r1's.

	c := consensus.Aggregate([]model.Report{r1, r2})

	if len(c.SuggestedTips) != 2 || c.SuggestedTips[0] != 10 || c.SuggestedTips[1] != 15 {
		t.Errorf("Expected [10 15], got %v", c.SuggestedTips)
	}
}

func TestAggregateSuggestedTipsIgnoresOtherCategories(t *testing.T) {
	r1 := report("rpt_1", 0, model.TipPracticeTipRequested)
	r1.SuggestedTips = datatypes.JSONSlice[int]{18, 20, 22}
	r2 := report("rpt_2", 1, model.TipPracticeServiceCharge)
	r2.SuggestedTips = datatypes.JSONSlice[int]{99}

	c := consensus.Aggregate([]model.Report{r1, r2})

	if len(c.SuggestedTips) != 3 || c.SuggestedTips[0] != 18 {
		t.Errorf("Expected tips from the tip_requested report, got %v", c.SuggestedTips)
	}
}

func TestAggregateStaffVerdictFromMostRecentObservation(t *testing.T) {
	r1 := report("rpt_1", 0, model.TipPracticeTipRequested)
	r1.TipsGoToStaff = boolPtr(true)
	r2 := report("rpt_2", 1, model.TipPracticeServiceCharge)
	r2.TipsGoToStaff = boolPtr(false)
	r3 := report("rpt_3", 2, model.TipPracticeTipRequested)
	// r3 has no observation, so r2's stands.

	c := consensus.Aggregate([]model.Report{r1, r2, r3})

	if c.TipsGoToStaff == nil || *c.TipsGoToStaff != false {
		t.Errorf("Expected staff verdict false, got %v", c.TipsGoToStaff)
	}
}

func TestAggregateStaffVerdictIgnoresNoTippingReports(t *testing.T) {
	r1 := report("rpt_1", 0, model.TipPracticeNoTipping)
	r1.TipsGoToStaff = boolPtr(true)

	c := consensus.Aggregate([]model.Report{r1})

	if c.TipsGoToStaff != nil {
		t.Errorf("Expected unknown staff verdict, got %v", *c.TipsGoToStaff)
	}
}

func TestAggregateServiceChargeLatestWins(t *testing.T) {
	r1 := report("rpt_1", 0, model.TipPracticeServiceCharge)
	r1.ServiceChargePercentage = intPtr(18)
	r2 := report("rpt_2", 1, model.TipPracticeServiceCharge)
	r2.ServiceChargePercentage = intPtr(20)
	r3 := report("rpt_3", 2, model.TipPracticeServiceCharge)
	// r3 did not state a percentage.

	c := consensus.Aggregate([]model.Report{r1, r2, r3})

	if c.ServiceChargePercentage == nil || *c.ServiceChargePercentage != 20 {
		t.Errorf("Expected service charge 20, got %v", c.ServiceChargePercentage)
	}
}

func TestAggregateDeterministicAcrossArrivalOrder(t *testing.T) {
	r1 := report("rpt_1", 0, model.TipPracticeTipRequested)
	r1.SuggestedTips = datatypes.JSONSlice[int]{15}
	r2 := report("rpt_2", 1, model.TipPracticeNoTipping)
	r3 := report("rpt_3", 2, model.TipPracticeTipRequested)
	r3.TipsGoToStaff = boolPtr(true)

	orders := [][]model.Report{
		{r1, r2, r3},
		{r3, r1, r2},
		{r2, r3, r1},
	}
	for _, reports := range orders {
		c := consensus.Aggregate(reports)
		if c.TipPractice == nil || *c.TipPractice != model.TipPracticeTipRequested {
			t.Errorf("Expected tip_requested regardless of arrival order, got %v", c.TipPractice)
		}
		if c.TipsGoToStaff == nil || !*c.TipsGoToStaff {
			t.Errorf("Expected staff verdict true regardless of arrival order, got %v", c.TipsGoToStaff)
		}
		if len(c.SuggestedTips) != 1 || c.SuggestedTips[0] != 15 {
			t.Errorf("Expected [15] regardless of arrival order, got %v", c.SuggestedTips)
		}
	}
}

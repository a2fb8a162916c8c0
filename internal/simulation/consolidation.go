package simulation

import (
	"math"
	"sort"
	"strings"
	"time"
)

// deficitTolerance keeps float noise from flagging a phantom deficit day.
const deficitTolerance = -0.01

// ConsolidatedPoint is one day of the weighted multi-entity series.
type ConsolidatedPoint struct {
	Date            string  `json:"date"`
	Balance         float64 `json:"balance"`
	AvailableCredit float64 `json:"available_credit"`
}

// ConsolidatedView is the ownership-weighted rollup of a forecast for a
// selected set of entities (empty selection means the whole forest).
type ConsolidatedView struct {
	Weights          map[string]float64  `json:"weights"`
	OpeningBalance   float64             `json:"opening_balance"`
	AvailableCredit  float64             `json:"available_credit"`
	UncalledCapital  float64             `json:"uncalled_capital"`
	FirstDeficitDate string              `json:"first_deficit_date,omitempty"`
	Series           []ConsolidatedPoint `json:"series"`
}

// ConsolidatedWeight is the effective ownership share of an entity seen from
// the top of the forest: the product of ownership percentages walking up the
// parent chain.
func ConsolidatedWeight(id string, entities []Entity) float64 {
	byID := make(map[string]Entity, len(entities))
	for _, e := range entities {
		byID[e.ID] = e
	}
	weight := 1.0
	hops := 0
	current, ok := byID[id]
	for ok && current.ParentID != "" {
		weight *= current.OwnershipPercentage / 100
		current, ok = byID[current.ParentID]
		hops++
		if hops > len(entities) {
			break
		}
	}
	return weight
}

// BuildConsolidatedView rolls a forecast up into weighted KPIs and a daily
// weighted balance/credit series. Opening balance backs the day-zero flows
// out of the day-zero closing balance so the KPI reflects the position at the
// anchor, before anything was applied.
func BuildConsolidatedView(state AppState, results []DailyResult, selection []string) ConsolidatedView {
	view := ConsolidatedView{Weights: map[string]float64{}}
	if len(results) == 0 {
		return view
	}

	selected := make(map[string]bool, len(selection))
	for _, id := range selection {
		selected[id] = true
	}
	var entities []Entity
	for _, ent := range state.Entities {
		if len(selection) == 0 || selected[ent.ID] {
			entities = append(entities, ent)
			view.Weights[ent.ID] = ConsolidatedWeight(ent.ID, state.Entities)
		}
	}

	limits := make(map[string]float64, len(entities))
	day0 := results[0]
	for _, ent := range entities {
		w := view.Weights[ent.ID]
		day0Flow := 0.0
		for _, tx := range day0.Transactions {
			if tx.EntityID == ent.ID {
				day0Flow += tx.Amount
			}
		}
		view.OpeningBalance += (day0.EntityBalances[ent.ID] - day0Flow) * w
		view.UncalledCapital += ent.UncalledCapital * w
		for _, acc := range state.Accounts {
			if acc.EntityID != ent.ID {
				continue
			}
			limits[ent.ID] += acc.CreditLimit
			view.AvailableCredit += math.Max(0, acc.CreditLimit-acc.CurrentCreditUtil) * w
		}
	}

	view.Series = make([]ConsolidatedPoint, 0, len(results))
	for _, day := range results {
		point := ConsolidatedPoint{Date: day.Date}
		for _, ent := range entities {
			w := view.Weights[ent.ID]
			point.Balance += day.EntityBalances[ent.ID] * w
			point.AvailableCredit += math.Max(0, limits[ent.ID]-day.EntityCreditUtil[ent.ID]) * w
		}
		if view.FirstDeficitDate == "" && point.Balance < deficitTolerance {
			view.FirstDeficitDate = day.Date
		}
		view.Series = append(view.Series, point)
	}
	return view
}

// BudgetStatus is the projected standing of one budget line.
type BudgetStatus struct {
	Budget         Budget  `json:"budget"`
	ForecastAmount float64 `json:"forecast_amount"`
	TotalProjected float64 `json:"total_projected"`
	Utilization    float64 `json:"utilization"`
	Status         string  `json:"status"`
}

// incomeCategories mirrors the entry-form vocabulary: these budget categories
// measure revenue, so underspending them is the breach direction.
var incomeCategories = map[string]bool{
	CategoryRent:         true,
	CategoryAssetSale:    true,
	CategoryLoanReceipts: true,
	"Customers":          true,
}

// BuildBudgetStatuses projects each budget line by adding the forecast flows
// of its category (within the anchor's calendar year) to the manual YTD
// actual. Expense lines go "over" above the envelope, income lines go
// "under" below it.
func BuildBudgetStatuses(state AppState, results []DailyResult, anchor time.Time) []BudgetStatus {
	year := anchor.Year()
	statuses := make([]BudgetStatus, 0, len(state.Budgets))
	for _, budget := range state.Budgets {
		forecast := 0.0
		for _, day := range results {
			date, err := time.Parse(DateFormat, day.Date)
			if err != nil || date.Year() != year {
				continue
			}
			for _, tx := range day.Transactions {
				if tx.EntityID != budget.EntityID || tx.Category != budget.Category {
					continue
				}
				if budget.Property != "" && !strings.Contains(tx.Description, budget.Property) {
					continue
				}
				forecast += math.Abs(tx.Amount)
			}
		}

		total := budget.ManualActualYTD + forecast
		utilization := 0.0
		if budget.AnnualBudget > 0 {
			utilization = total / budget.AnnualBudget * 100
		}
		status := "ontrack"
		if incomeCategories[budget.Category] {
			if total < budget.AnnualBudget {
				status = "under"
			}
		} else if total > budget.AnnualBudget {
			status = "over"
		}
		statuses = append(statuses, BudgetStatus{
			Budget:         budget,
			ForecastAmount: forecast,
			TotalProjected: total,
			Utilization:    utilization,
			Status:         status,
		})
	}
	return statuses
}

// UpcomingTasks returns open tasks due within the window starting at the
// anchor, date-ascending.
func UpcomingTasks(tasks []Task, anchor time.Time, windowDays int) []Task {
	from := dayStart(anchor)
	to := addDays(from, windowDays)
	var due []Task
	for _, t := range tasks {
		if t.IsCompleted {
			continue
		}
		d := dayStart(t.DueDate)
		if !d.Before(from) && !d.After(to) {
			due = append(due, t)
		}
	}
	sort.SliceStable(due, func(i, j int) bool { return due[i].DueDate.Before(due[j].DueDate) })
	return due
}

package simulation

import (
	"fmt"
	"math"
	"sort"
	"time"
)

const (
	// defaultCreditSpread applies when an entity has no account to read a
	// spread from.
	defaultCreditSpread = 1.5
	// minInjection filters capital calls below materiality.
	minInjection = 100.0
	// triggerLookaheadDays is the short window scanned to decide whether an
	// injection is needed at all.
	triggerLookaheadDays = 7
	// sizing lookaheads: wholly-owned subsidiaries get a short scan, ones
	// with minority co-owners a long one.
	sizingLookaheadOwned    = 14
	sizingLookaheadMinority = 90
)

// ledgerKindFor maps a transaction kind onto the closed ledger classification.
func ledgerKindFor(kind TxKind) LedgerKind {
	switch kind {
	case TxFinancial:
		return LedgerFinancial
	case TxIntercompany:
		return LedgerIntercompany
	case TxTax:
		return LedgerTax
	}
	return LedgerOperational
}

// balanceWithCredit computes the draw or repay needed to hold cash at the
// target level using the pooled credit facility. action is "draw", "repay" or
// empty when nothing moves.
func balanceWithCredit(cash, target, creditLimit, creditUtil float64) (newCash, newUtil float64, action string, amount float64) {
	newCash = cash
	newUtil = creditUtil

	if cash < target {
		deficit := target - cash
		available := math.Max(0, creditLimit-creditUtil)
		draw := math.Min(deficit, available)
		if draw > 0 {
			return cash + draw, creditUtil + draw, "draw", draw
		}
	} else if cash > target && creditUtil > 0 {
		surplus := cash - target
		repay := math.Min(surplus, creditUtil)
		if repay > 0 {
			return cash - repay, creditUtil - repay, "repay", repay
		}
	}
	return newCash, newUtil, "", 0
}

// entityDepth returns the hierarchy depth of an entity, roots at zero. Broken
// parent references terminate the walk.
func entityDepth(id string, byID map[string]Entity) int {
	depth := 0
	for {
		ent, ok := byID[id]
		if !ok || ent.ParentID == "" {
			return depth
		}
		id = ent.ParentID
		depth++
		if depth > len(byID) {
			// cycle guard; the CRUD layer forbids cycles but the engine
			// must not spin if handed one
			return depth
		}
	}
}

type vatSettlement struct {
	settlementDate string
	amount         float64
	entityID       string
}

// Run projects the snapshot forward day by day from the anchor date and
// returns one result per simulated day. The anchor is truncated to local
// midnight; a non-positive horizon falls back to DefaultHorizonDays. The
// input state is never mutated.
func Run(state AppState, anchor time.Time, days int) []DailyResult {
	if days <= 0 {
		days = DefaultHorizonDays
	}
	today := dayStart(anchor)

	loanTxs := expandLoans(state.Loans, today, days, state.Settings)
	leaseTxs := expandLeases(state.Leases, today, days, state.Settings.CPI)
	assetTxs, originalTxs := expandMilestones(state.Transactions, state.Settings.CPI)

	allInitial := make([]Transaction, 0, len(originalTxs)+len(assetTxs)+len(loanTxs)+len(leaseTxs))
	allInitial = append(allInitial, originalTxs...)
	allInitial = append(allInitial, assetTxs...)
	allInitial = append(allInitial, loanTxs...)
	allInitial = append(allInitial, leaseTxs...)

	vatRate := state.Settings.VATRate
	if vatRate == 0 {
		vatRate = 17
	}
	vatRate /= 100

	entities := state.Entities
	buckets := bucketTransactions(allInitial, entities, today, days, vatRate)

	balances := make(map[string]float64, len(entities))
	creditUtil := make(map[string]float64, len(entities))
	creditLimits := make(map[string]float64, len(entities))
	monthRevenue := make(map[string]float64, len(entities))
	vatAccumulated := make(map[string]float64, len(entities))
	mainAccountID := make(map[string]string, len(entities))
	mainAccountSpread := make(map[string]float64, len(entities))

	for _, ent := range entities {
		balances[ent.ID] = 0
		creditUtil[ent.ID] = 0
		creditLimits[ent.ID] = 0
		var mainAcc *Account
		for a := range state.Accounts {
			acc := &state.Accounts[a]
			if acc.EntityID != ent.ID {
				continue
			}
			balances[ent.ID] += sanitize(acc.OpeningBalance)
			creditUtil[ent.ID] += sanitize(acc.CurrentCreditUtil)
			creditLimits[ent.ID] += sanitize(acc.CreditLimit)
			if mainAcc == nil || acc.CreditLimit > mainAcc.CreditLimit {
				mainAcc = acc
			}
		}
		if mainAcc != nil {
			mainAccountID[ent.ID] = mainAcc.ID
			mainAccountSpread[ent.ID] = mainAcc.InterestSpread
		}
	}

	entityByID := make(map[string]Entity, len(entities))
	for _, ent := range entities {
		entityByID[ent.ID] = ent
	}

	// parent-before-child processing order for the capital-call cascade
	sortedEntities := make([]Entity, len(entities))
	copy(sortedEntities, entities)
	sort.SliceStable(sortedEntities, func(i, j int) bool {
		return entityDepth(sortedEntities[i].ID, entityByID) < entityDepth(sortedEntities[j].ID, entityByID)
	})

	var vatQueue []vatSettlement
	results := make([]DailyResult, 0, days)

	for i := 0; i < days; i++ {
		currentDate := addDays(today, i)
		dayOfMonth := currentDate.Day()
		currentDateStr := currentDate.Format(DateFormat)
		dayLedger := []LedgerEntry{}
		alerts := []string{}

		// month boundary: credit-line interest and VAT settlement scheduling
		if dayOfMonth == 1 {
			for _, ent := range entities {
				if creditUtil[ent.ID] > 0 {
					spread := mainAccountSpread[ent.ID]
					if spread == 0 {
						spread = defaultCreditSpread
					}
					rate := (primeRateAt(currentDate, state.Settings) + spread) / 1200
					interest := creditUtil[ent.ID] * rate
					balances[ent.ID] -= interest
					dayLedger = append(dayLedger, LedgerEntry{
						Description: "Credit line interest",
						Amount:      -interest,
						EntityID:    ent.ID,
						Kind:        LedgerOperational,
						Category:    CategoryBankInterest,
						AccountID:   mainAccountID[ent.ID],
					})
				}
				vatToSettle := vatAccumulated[ent.ID]
				if math.Abs(vatToSettle) > 1 {
					var due time.Time
					if vatToSettle > 0 {
						due = withDayOfMonth(currentDate, 22)
					} else {
						due = withDayOfMonth(addMonths(currentDate, 1), 15)
					}
					vatQueue = append(vatQueue, vatSettlement{
						settlementDate: due.Format(DateFormat),
						amount:         -vatToSettle,
						entityID:       ent.ID,
					})
				}
				vatAccumulated[ent.ID] = 0
				monthRevenue[ent.ID] = 0
			}
		}

		// apply queued VAT settlements falling due today
		if len(vatQueue) > 0 {
			kept := vatQueue[:0]
			for _, item := range vatQueue {
				if item.settlementDate != currentDateStr {
					kept = append(kept, item)
					continue
				}
				balances[item.entityID] += item.amount
				desc := "VAT refund"
				if item.amount < 0 {
					desc = "VAT payment"
				}
				dayLedger = append(dayLedger, LedgerEntry{
					Description: desc,
					Amount:      item.amount,
					EntityID:    item.entityID,
					Kind:        LedgerTax,
					Category:    CategoryVAT,
				})
			}
			vatQueue = kept
		}

		// materialized transactions and income-tax advances
		for _, ent := range entities {
			for _, tx := range buckets.txs[ent.ID][i] {
				effective, vatComponent := effectiveAmount(tx, vatRate)
				balances[ent.ID] += effective
				if tx.IncludesVAT {
					if effective > 0 {
						vatAccumulated[ent.ID] += vatComponent
					} else {
						vatAccumulated[ent.ID] -= vatComponent
					}
				}
				if effective > 0 && (tx.Kind == TxOperational || tx.Kind == TxIncome) {
					monthRevenue[ent.ID] += sanitize(tx.Amount)
				}
				dayLedger = append(dayLedger, LedgerEntry{
					Description: tx.Description,
					Amount:      effective,
					EntityID:    ent.ID,
					Kind:        ledgerKindFor(tx.Kind),
					Category:    tx.Category,
					AccountID:   tx.AccountID,
					IncludesVAT: tx.IncludesVAT,
				})

				if tx.IsIntercompany && tx.TargetEntityID != "" {
					if _, known := balances[tx.TargetEntityID]; known {
						balances[tx.TargetEntityID] -= effective
						dayLedger = append(dayLedger, LedgerEntry{
							Description: "Counter-leg: " + tx.Description,
							Amount:      -effective,
							EntityID:    tx.TargetEntityID,
							Kind:        LedgerIntercompany,
							Category:    CategoryIntercompany,
							AccountID:   tx.TargetAccountID,
						})
					}
				}
			}

			if dayOfMonth == 15 && ent.HasTaxAdvances {
				taxPayment := monthRevenue[ent.ID] * ent.TaxAdvanceRate / 100
				if taxPayment > 1 {
					balances[ent.ID] -= taxPayment
					dayLedger = append(dayLedger, LedgerEntry{
						Description: "Income tax advance",
						Amount:      -taxPayment,
						EntityID:    ent.ID,
						Kind:        LedgerTax,
						Category:    CategoryIncomeTax,
					})
				}
			}
		}

		// intercompany capital-call cascade, parents before children; each
		// pass only reaches one level up, deeper deficits resolve over the
		// following days
		for _, ent := range sortedEntities {
			if ent.ParentID == "" {
				continue
			}
			currentAvail := balances[ent.ID] + (creditLimits[ent.ID] - creditUtil[ent.ID])
			if currentAvail >= ent.TargetBalance {
				continue
			}

			injectionNeeded := false
			runningSum := currentAvail
			limit := i + triggerLookaheadDays
			if limit > days-1 {
				limit = days - 1
			}
			for k := i + 1; k <= limit; k++ {
				runningSum += buckets.staticNet[ent.ID][k]
				if runningSum < ent.TargetBalance {
					injectionNeeded = true
					break
				}
			}
			if !injectionNeeded {
				continue
			}

			lookahead := sizingLookaheadOwned
			if ent.OwnershipPercentage < 100 {
				lookahead = sizingLookaheadMinority
			}
			minProjected := currentAvail
			running := currentAvail
			scanLimit := i + lookahead
			if scanLimit > days {
				scanLimit = days
			}
			for k := i + 1; k < scanLimit; k++ {
				running += buckets.staticNet[ent.ID][k]
				if running < minProjected {
					minProjected = running
				}
			}

			amount := ent.TargetBalance - minProjected
			if amount <= minInjection {
				continue
			}
			parentID := ent.ParentID
			if _, known := balances[parentID]; !known {
				alerts = append(alerts, fmt.Sprintf("Capital call failed for %s: parent entity not found", ent.Name))
				continue
			}
			parentShare := ent.OwnershipPercentage / 100 * amount
			partnerShare := amount - parentShare

			parentAvail := balances[parentID] + (creditLimits[parentID] - creditUtil[parentID])
			if parentAvail < parentShare {
				alerts = append(alerts, fmt.Sprintf("Capital call failed for %s: shortfall at parent company", ent.Name))
				continue
			}

			balances[ent.ID] += parentShare
			balances[parentID] -= parentShare
			dayLedger = append(dayLedger, LedgerEntry{
				Description: "Capital injection",
				Amount:      parentShare,
				EntityID:    ent.ID,
				Kind:        LedgerFinancial,
				Category:    CategoryOwnerInjection,
			})
			dayLedger = append(dayLedger, LedgerEntry{
				Description: "Injection to subsidiary",
				Amount:      -parentShare,
				EntityID:    parentID,
				Kind:        LedgerFinancial,
				Category:    CategoryOwnerFunding,
			})
			if partnerShare > 0.01 {
				balances[ent.ID] += partnerShare
				dayLedger = append(dayLedger, LedgerEntry{
					Description: "Partner capital call",
					Amount:      partnerShare,
					EntityID:    ent.ID,
					Kind:        LedgerFinancial,
					Category:    CategoryPartnerCapital,
				})
			}
		}

		// credit-line balancing keeps cash at the target level
		for _, ent := range entities {
			newCash, newUtil, action, amount := balanceWithCredit(
				balances[ent.ID], ent.TargetBalance, creditLimits[ent.ID], creditUtil[ent.ID])
			if action == "" {
				continue
			}
			balances[ent.ID] = newCash
			creditUtil[ent.ID] = newUtil
			entry := LedgerEntry{
				EntityID: ent.ID,
				Kind:     LedgerFinancial,
				Category: CategoryCreditBalancing,
			}
			if action == "draw" {
				entry.Description = "Credit line draw"
				entry.Amount = amount
			} else {
				entry.Description = "Credit line repayment"
				entry.Amount = -amount
			}
			dayLedger = append(dayLedger, entry)
		}

		balancesCopy := make(map[string]float64, len(balances))
		utilCopy := make(map[string]float64, len(creditUtil))
		aggregated := 0.0
		for _, ent := range entities {
			balancesCopy[ent.ID] = balances[ent.ID]
			utilCopy[ent.ID] = creditUtil[ent.ID]
			aggregated += balances[ent.ID]
		}

		results = append(results, DailyResult{
			Date:             currentDateStr,
			EntityBalances:   balancesCopy,
			EntityCreditUtil: utilCopy,
			AggregatedCash:   aggregated,
			Transactions:     dayLedger,
			Alerts:           alerts,
		})
	}

	return results
}

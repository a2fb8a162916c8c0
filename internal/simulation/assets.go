package simulation

// isAssetCategory reports whether a transaction belongs to the staged asset
// deal categories that carry payment milestones.
func isAssetCategory(category string) bool {
	return category == CategoryAssetPurchase || category == CategoryAssetSale
}

// expandMilestones replaces each active asset transaction that carries
// milestones with one event per milestone, each independently CPI adjusted
// from the parent's linkage base. The parent itself is dropped from the
// stream to avoid double counting; milestones never recurse.
func expandMilestones(transactions []Transaction, currentCPI float64) (expanded, remaining []Transaction) {
	for _, tx := range transactions {
		if tx.IsActive && isAssetCategory(tx.Category) && len(tx.Milestones) > 0 {
			for _, m := range tx.Milestones {
				event := tx
				event.ID = "asset-" + tx.ID + "-m-" + m.ID
				event.Description = tx.Description + ": " + m.Description
				event.Amount = linkageAdjust(m.Amount, tx.LinkageIndexBase, currentCPI)
				event.Date = dayStart(m.Date)
				event.IsRecurring = false
				event.Milestones = nil
				expanded = append(expanded, event)
			}
			continue
		}
		remaining = append(remaining, tx)
	}
	return expanded, remaining
}

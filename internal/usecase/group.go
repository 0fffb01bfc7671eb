package usecase

import (
	"sort"
	"strings"

	"github.com/openverse-dev/weekly-digest/internal/domain"
)

// StackLabelPrefix marks the labels the --group-by-stack report buckets by.
const StackLabelPrefix = "stack:"

// Flatten merges per-repository activity back into a single sequence
// for grouping: merged PRs then closed issues per repository, in
// repository order.
func Flatten(activities []domain.RepoActivity) []domain.ActivityItem {
	var items []domain.ActivityItem
	for _, a := range activities {
		items = append(items, a.MergedPRs...)
		items = append(items, a.ClosedIssues...)
	}
	return items
}

// GroupByStack partitions items into label groups. An item carrying N
// stack labels appears in all N groups; an item carrying none goes only
// to the Unlabeled bucket. Groups come out in ascending label order,
// case-sensitive; items keep their fetch order within a group.
func GroupByStack(items []domain.ActivityItem) []domain.LabelGroup {
	buckets := make(map[string][]domain.ActivityItem)
	for _, item := range items {
		matched := false
		for _, label := range item.Labels {
			if strings.HasPrefix(label, StackLabelPrefix) {
				buckets[label] = append(buckets[label], item)
				matched = true
			}
		}
		if !matched {
			buckets[domain.UnlabeledGroup] = append(buckets[domain.UnlabeledGroup], item)
		}
	}

	labels := make([]string, 0, len(buckets))
	for label := range buckets {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	groups := make([]domain.LabelGroup, 0, len(labels))
	for _, label := range labels {
		groups = append(groups, domain.LabelGroup{Label: label, Items: buckets[label]})
	}
	return groups
}

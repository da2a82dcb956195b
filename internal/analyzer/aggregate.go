package analyzer

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/seerlab/haruspex/pkg/models"
)

// Aggregate folds per-method results into the archive-level report:
// per-class statistics, codebase summary, and hotspot flags with
// recommendations. Failed methods are counted and carried through, never
// silently dropped.
func Aggregate(source string, results []*models.MethodResult, thresholds models.Thresholds) *models.Report {
	report := &models.Report{
		GeneratedAt: time.Now().UTC(),
		Source:      source,
	}

	byClass := make(map[string]*models.ClassComplexity)
	var classNames []string

	var cyclomatics, cognitives []float64

	for _, r := range results {
		report.Methods = append(report.Methods, *r)

		cc, ok := byClass[r.ClassName]
		if !ok {
			cc = &models.ClassComplexity{ClassName: r.ClassName}
			byClass[r.ClassName] = cc
			classNames = append(classNames, r.ClassName)
		}
		cc.Methods++

		if r.Failed() {
			cc.FailedMethods++
			report.Summary.FailedMethods++
			continue
		}

		cyclomatics = append(cyclomatics, float64(r.Metrics.Cyclomatic))
		cognitives = append(cognitives, float64(r.Metrics.Cognitive))

		cc.SumCyclomatic += r.Metrics.Cyclomatic
		if r.Metrics.Cyclomatic > cc.MaxCyclomatic {
			cc.MaxCyclomatic = r.Metrics.Cyclomatic
		}
		if r.Metrics.Cognitive > cc.MaxCognitive {
			cc.MaxCognitive = r.Metrics.Cognitive
		}

		if report.Summary.RiskCounts == nil {
			report.Summary.RiskCounts = make(map[models.RiskLevel]int)
		}
		report.Summary.RiskCounts[r.Risk]++

		if r.Metrics.Cyclomatic > thresholds.MethodCyclomatic ||
			r.Metrics.Cognitive > thresholds.MethodCognitive {
			report.Hotspots = append(report.Hotspots, models.Hotspot{
				Kind:           models.HotspotMethod,
				ClassName:      r.ClassName,
				Method:         r.Name + r.Descriptor,
				Cyclomatic:     r.Metrics.Cyclomatic,
				Cognitive:      r.Metrics.Cognitive,
				Recommendation: models.MethodRecommendation(r.ID(), r.Metrics.Cyclomatic, r.Metrics.Cognitive),
			})
		}
	}

	sort.Strings(classNames)
	for _, name := range classNames {
		cc := byClass[name]
		if analyzed := cc.Methods - cc.FailedMethods; analyzed > 0 {
			cc.MeanCyclomatic = float64(cc.SumCyclomatic) / float64(analyzed)
		}
		report.Classes = append(report.Classes, *cc)

		if cc.MeanCyclomatic > thresholds.ClassMean {
			report.Hotspots = append(report.Hotspots, models.Hotspot{
				Kind:           models.HotspotClass,
				ClassName:      cc.ClassName,
				MeanCyclomatic: cc.MeanCyclomatic,
				Recommendation: models.ClassRecommendation(cc.ClassName, cc.MeanCyclomatic),
			})
		}
	}

	report.Summary.TotalClasses = len(report.Classes)
	report.Summary.TotalMethods = len(report.Methods)

	if len(cyclomatics) > 0 {
		report.Summary.AvgCyclomatic = stat.Mean(cyclomatics, nil)
		report.Summary.AvgCognitive = stat.Mean(cognitives, nil)

		sort.Float64s(cyclomatics)
		report.Summary.MaxCyclomatic = int(cyclomatics[len(cyclomatics)-1])
		report.Summary.P50Cyclomatic = int(stat.Quantile(0.50, stat.Empirical, cyclomatics, nil))
		report.Summary.P90Cyclomatic = int(stat.Quantile(0.90, stat.Empirical, cyclomatics, nil))
		report.Summary.P95Cyclomatic = int(stat.Quantile(0.95, stat.Empirical, cyclomatics, nil))

		sort.Float64s(cognitives)
		report.Summary.MaxCognitive = int(cognitives[len(cognitives)-1])
	}

	// Worst offenders first; method hotspots ahead of class hotspots at
	// equal severity.
	sort.SliceStable(report.Hotspots, func(i, j int) bool {
		a, b := report.Hotspots[i], report.Hotspots[j]
		sa, sb := float64(a.Cyclomatic)+a.MeanCyclomatic, float64(b.Cyclomatic)+b.MeanCyclomatic
		if sa != sb {
			return sa > sb
		}
		return a.ClassName < b.ClassName
	})

	return report
}

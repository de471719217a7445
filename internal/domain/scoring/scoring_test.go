package scoring_test

import (
	"strings"
	"testing"

	"github.com/okian/assessor/internal/domain/model"
	"github.com/okian/assessor/internal/domain/patterns"
	"github.com/okian/assessor/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func codeInput(code string) model.AssessmentInput {
	return model.AssessmentInput{
		CandidateID:    "candidate-1",
		SubmissionType: model.SubmissionCode,
		Content:        map[string]any{"code": code},
	}
}

func metricByName(metrics []model.ScoringMetric, name string) model.ScoringMetric {
	for _, m := range metrics {
		if m.Name == name {
			return m
		}
	}
	return model.ScoringMetric{}
}

func TestHeuristicScorer_Technical(t *testing.T) {
	Convey("Given a heuristic scorer with pattern checks on", t, func() {
		scorer := scoring.NewHeuristicScorer()

		Convey("When scoring a tiny function", func() {
			in := codeInput("def hello():\n    return 'world'")
			violations := patterns.Detect(in.Text(), nil)
			metrics := scorer.GenerateMetricsForPath(model.PathTechnical, in, violations)

			Convey("Then Code Quality is exactly 60", func() {
				So(violations, ShouldBeEmpty)
				So(metrics, ShouldHaveLength, 3)
				cq := metricByName(metrics, "Code Quality")
				So(cq.Score, ShouldEqual, 60.0)
				So(cq.Weight, ShouldEqual, 0.3)
				So(cq.Confidence, ShouldEqual, 0.85)
				So(cq.Category, ShouldEqual, "technical")
				So(cq.Explanation, ShouldEqual, "Code shows solid fundamentals with room for improvement")
				So(cq.Evidence, ShouldHaveLength, 1)
				So(cq.Evidence[0].Source, ShouldEqual, "code_structure")
			})

			Convey("Then metrics come in battery order", func() {
				So(metrics[0].Name, ShouldEqual, "Code Quality")
				So(metrics[1].Name, ShouldEqual, "Problem Solving")
				So(metrics[2].Name, ShouldEqual, "Testing")
			})
		})

		Convey("When a long submission is mostly logic", func() {
			code := strings.Repeat("x = 1\n", 11) + "y = 2"
			metrics := scorer.GenerateMetricsForPath(model.PathTechnical, codeInput(code), nil)

			Convey("Then the density bonus applies", func() {
				So(metricByName(metrics, "Code Quality").Score, ShouldEqual, 58.0)
			})
		})

		Convey("When the code has a pattern violation", func() {
			in := codeInput("try:\n    run()\nexcept:\n    pass")
			violations := patterns.Detect(in.Text(), nil)
			cq := metricByName(scorer.GenerateMetricsForPath(model.PathTechnical, in, violations), "Code Quality")

			Convey("Then the penalty is subtracted and reported", func() {
				So(cq.Score, ShouldEqual, 57.0)
				So(cq.Explanation, ShouldEndWith, " Pattern checks flagged 1 potential issue.")
				So(cq.Evidence, ShouldHaveLength, 2)
				So(cq.Evidence[1].Source, ShouldEqual, "pattern_checks")
				So(cq.Evidence[1].Weight, ShouldEqual, 0.7)
				So(cq.Evidence[1].Description, ShouldEqual, "Pattern violation: specific_exceptions - Bare except clause (should catch specific exceptions)")
				So(cq.Evidence[1].Metadata["line"], ShouldEqual, 3)
			})

			Convey("And pattern checks are disabled", func() {
				off := scoring.NewHeuristicScorer(scoring.WithPatternChecks(false))
				cq := metricByName(off.GenerateMetricsForPath(model.PathTechnical, in, violations), "Code Quality")

				Convey("Then no penalty or note is applied", func() {
					So(cq.Score, ShouldEqual, 60.0)
					So(cq.Explanation, ShouldNotContainSubstring, "Pattern checks")
					So(cq.Evidence, ShouldHaveLength, 1)
				})
			})
		})

		Convey("When there are many violations", func() {
			var b strings.Builder
			for i := 0; i < 20; i++ {
				b.WriteString("print(x)\n")
			}
			in := codeInput(b.String())
			violations := patterns.Detect(in.Text(), nil)
			cq := metricByName(scorer.GenerateMetricsForPath(model.PathTechnical, in, violations), "Code Quality")

			Convey("Then violation evidence is capped at ten", func() {
				So(len(violations), ShouldEqual, 20)
				So(cq.Evidence, ShouldHaveLength, 10)
				So(cq.Explanation, ShouldEndWith, "flagged 20 potential issues.")
			})
		})

		Convey("When testing vocabulary is present", func() {
			metrics := scorer.GenerateMetricsForPath(model.PathTechnical, codeInput("test assert mock"), nil)
			testing := metricByName(metrics, "Testing")
			So(testing.Score, ShouldEqual, 75.0)
			So(testing.Explanation, ShouldEqual, "Good testing awareness and practices")
			So(testing.Evidence[0].Type, ShouldEqual, model.EvidenceTesting)
		})

		Convey("When the penalty would push below zero", func() {
			heavy := scoring.NewHeuristicScorer(
				scoring.WithSeverityWeights(patterns.SeverityWeights{patterns.SeverityLow: 500}),
				scoring.WithMaxPenalty(500),
			)
			in := codeInput("print(x)")
			cq := metricByName(heavy.GenerateMetricsForPath(model.PathTechnical, in, patterns.Detect(in.Text(), nil)), "Code Quality")
			So(cq.Score, ShouldEqual, 0.0)
		})
	})
}

func TestHeuristicScorer_OtherPaths(t *testing.T) {
	Convey("Given a heuristic scorer", t, func() {
		scorer := scoring.NewHeuristicScorer()

		Convey("When scoring design", func() {
			metrics := scorer.GenerateMetricsForPath(model.PathDesign, codeInput("class Foo: # consider alternative design pattern"), nil)
			So(metrics, ShouldHaveLength, 2)
			So(metrics[0].Name, ShouldEqual, "Architecture")
			So(metrics[0].Score, ShouldEqual, 75.0)
			So(metrics[0].Weight, ShouldEqual, 0.4)
			So(metrics[1].Name, ShouldEqual, "Design Thinking")
			So(metrics[1].Score, ShouldEqual, 75.0)
			So(metrics[1].Explanation, ShouldEqual, "Demonstrates strong design thinking")
		})

		Convey("When scoring collaboration", func() {
			metrics := scorer.GenerateMetricsForPath(model.PathCollaboration, codeInput("# comment\n\"\"\"doc\"\"\"\nname = value"), nil)
			So(metrics, ShouldHaveLength, 2)
			So(metrics[0].Name, ShouldEqual, "Documentation")
			So(metrics[0].Score, ShouldEqual, 75.0)
			So(metrics[0].Evidence, ShouldHaveLength, 1)
			So(metrics[1].Name, ShouldEqual, "Code Readability")
			So(metrics[1].Score, ShouldEqual, 75.0)
			So(metrics[1].Weight, ShouldEqual, 0.35)
		})

		Convey("When scoring problem solving", func() {
			metrics := scorer.GenerateMetricsForPath(model.PathProblemSolving, codeInput("Let me analyze step by step using logic"), nil)
			So(metrics, ShouldHaveLength, 1)
			So(metrics[0].Name, ShouldEqual, "Analytical Thinking")
			So(metrics[0].Category, ShouldEqual, "problem_solving")
			So(metrics[0].Score, ShouldEqual, 75.0)
		})

		Convey("When the path is unknown", func() {
			So(scorer.GenerateMetricsForPath("data_science", codeInput("x"), nil), ShouldBeEmpty)
		})

		Convey("When content is empty", func() {
			for _, p := range []model.PathType{model.PathTechnical, model.PathDesign, model.PathCollaboration, model.PathProblemSolving} {
				for _, m := range scorer.GenerateMetricsForPath(p, model.AssessmentInput{}, nil) {
					So(m.Score, ShouldBeBetweenOrEqual, 0.0, 100.0)
					So(m.Confidence, ShouldBeBetweenOrEqual, 0.0, 1.0)
				}
			}
		})
	})
}

func TestMicroMotiveScorer(t *testing.T) {
	Convey("Given a micro-motive scorer", t, func() {
		scorer := scoring.NewMicroMotiveScorer()

		Convey("When technical text mentions optimize and algorithm", func() {
			motives := scorer.IdentifyMicroMotives(model.PathTechnical, codeInput("optimize the algorithm"))

			Convey("Then mastery is detected with deep understanding", func() {
				So(len(motives), ShouldBeGreaterThanOrEqualTo, 1)
				mastery := motives[0]
				So(mastery.MotiveType, ShouldEqual, model.MotiveMastery)
				So(mastery.Indicators, ShouldContain, "Deep technical understanding")
				So(mastery.Strength, ShouldBeBetweenOrEqual, 0.7, 1.0)
				So(mastery.PathAlignment, ShouldEqual, model.PathTechnical)
				So(mastery.Evidence, ShouldHaveLength, 1)
			})

			Convey("Then efficiency has a fixed strength", func() {
				last := motives[len(motives)-1]
				So(last.MotiveType, ShouldEqual, model.MotiveEfficiency)
				So(last.Strength, ShouldEqual, 0.6)
			})
		})

		Convey("When every technical trigger fires", func() {
			motives := scorer.IdentifyMicroMotives(model.PathTechnical, codeInput("efficient design; test clean code"))
			So(motives, ShouldHaveLength, 2)
			So(motives[0].Strength, ShouldAlmostEqual, 0.85)
			So(motives[1].MotiveType, ShouldEqual, model.MotiveQuality)
			So(motives[1].Strength, ShouldAlmostEqual, 0.75)
		})

		Convey("When design text explores creative alternatives", func() {
			motives := scorer.IdentifyMicroMotives(model.PathDesign, codeInput("an alternative, novel layout"))

			Convey("Then innovation combines both triggers", func() {
				So(motives, ShouldHaveLength, 1)
				innovation := motives[0]
				So(innovation.MotiveType, ShouldEqual, model.MotiveInnovation)
				So(innovation.Indicators, ShouldResemble, []string{"Explores multiple approaches", "Creative thinking"})
				So(innovation.Strength, ShouldAlmostEqual, 0.75)
				So(innovation.PathAlignment, ShouldEqual, model.PathDesign)
			})
		})

		Convey("When design text only mentions an approach", func() {
			motives := scorer.IdentifyMicroMotives(model.PathDesign, codeInput("my approach"))
			So(motives, ShouldHaveLength, 1)
			So(motives[0].Indicators, ShouldResemble, []string{"Explores multiple approaches"})
			So(motives[0].Strength, ShouldAlmostEqual, 0.6)
		})

		Convey("When no trigger fires", func() {
			So(scorer.IdentifyMicroMotives(model.PathDesign, codeInput("x = 1")), ShouldBeEmpty)
		})

		Convey("When the path is unknown", func() {
			So(scorer.IdentifyMicroMotives("marketing", codeInput("optimize")), ShouldBeEmpty)
		})

		Convey("When collaboration and exploration triggers fire", func() {
			collab := scorer.IdentifyMicroMotives(model.PathCollaboration, codeInput("document for the team"))
			So(collab, ShouldHaveLength, 1)
			So(collab[0].Indicators, ShouldResemble, []string{"Documentation focus", "Team-oriented thinking"})
			So(collab[0].Evidence, ShouldBeEmpty)

			explore := scorer.IdentifyMicroMotives(model.PathProblemSolving, codeInput("investigate"))
			So(explore, ShouldHaveLength, 1)
			So(explore[0].Strength, ShouldAlmostEqual, 0.6)
		})
	})
}

package model_test

import (
	"testing"

	"github.com/okian/assessor/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestExtractText(t *testing.T) {
	Convey("Given submission content", t, func() {
		Convey("When it is empty", func() {
			Convey("Then extraction yields an empty string", func() {
				So(model.ExtractText(nil), ShouldEqual, "")
				So(model.ExtractText(map[string]any{}), ShouldEqual, "")
			})
		})

		Convey("When several known keys are present", func() {
			content := map[string]any{
				"text": "prose",
				"code": "print(1)",
			}

			Convey("Then the highest priority key wins", func() {
				So(model.ExtractText(content), ShouldEqual, "print(1)")
			})
		})

		Convey("When the value is a list", func() {
			content := map[string]any{"solution": []any{"a", 2, "c"}}

			Convey("Then elements are joined by newlines", func() {
				So(model.ExtractText(content), ShouldEqual, "a\n2\nc")
			})
		})

		Convey("When the value is a scalar", func() {
			So(model.ExtractText(map[string]any{"content": 42}), ShouldEqual, "42")
		})

		Convey("When no known key exists", func() {
			content := map[string]any{"zeta": 1, "alpha": "x"}

			Convey("Then the mapping is rendered with sorted keys", func() {
				So(model.ExtractText(content), ShouldEqual, `{"alpha":"x","zeta":1}`)
			})
		})

		Convey("When used through the input", func() {
			in := model.AssessmentInput{Content: map[string]any{"submission": "done"}}
			So(in.Text(), ShouldEqual, "done")
		})
	})
}

func TestPathTitle(t *testing.T) {
	Convey("Path titles are human readable", t, func() {
		So(model.PathProblemSolving.Title(), ShouldEqual, "Problem Solving")
		So(model.PathTechnical.Title(), ShouldEqual, "Technical")
		So(model.PathType("data_science").Title(), ShouldEqual, "Data Science")
	})
}

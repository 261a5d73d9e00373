package scenario_test

import (
	"errors"
	"testing"

	"github.com/kardolus/agentic/scenario"
	. "github.com/onsi/gomega"
	"github.com/sclevine/spec"
	"github.com/sclevine/spec/report"
)

func TestUnitScenario(t *testing.T) {
	spec.Run(t, "Testing the scenario package", testScenario, spec.Report(report.Terminal{}))
}

func testScenario(t *testing.T, when spec.G, it spec.S) {
	it.Before(func() {
		RegisterTestingT(t)
	})

	when("Parse()", func() {
		it("keeps the declared order of a JSON description", func() {
			root, err := scenario.Parse([]byte(`{"zeta": {"b.py": 2, "a.py": 1}, "alpha": 7}`))
			Expect(err).NotTo(HaveOccurred())

			entries := root.Entries()
			Expect(entries).To(HaveLen(2))
			Expect(entries[0].Name).To(Equal("zeta"))
			Expect(entries[1].Name).To(Equal("alpha"))
			Expect(entries[1].Node).To(Equal(scenario.File{Size: 7}))

			sub, ok := entries[0].Node.(*scenario.Dir)
			Expect(ok).To(BeTrue())
			Expect(sub.Entries()[0].Name).To(Equal("b.py"))
		})

		it("accepts YAML", func() {
			root, err := scenario.Parse([]byte("src:\n  test_a.py: 10\nREADME.md: 3\n"))
			Expect(err).NotTo(HaveOccurred())
			Expect(root.Len()).To(Equal(2))
		})

		it("accepts an empty directory", func() {
			root, err := scenario.Parse([]byte(`{"empty": {}}`))
			Expect(err).NotTo(HaveOccurred())

			dir, err := root.LookupDir(scenario.ParsePath("empty"))
			Expect(err).NotTo(HaveOccurred())
			Expect(dir.Len()).To(BeZero())
		})

		for _, tc := range []struct {
			name  string
			input string
		}{
			{"a string value", `{"a": "big"}`},
			{"a float value", `{"a": 1.5}`},
			{"a boolean value", `{"a": true}`},
			{"a null value", `{"a": null}`},
			{"a list value", `{"a": [1, 2]}`},
			{"a negative size", `{"a": -1}`},
			{"a duplicate name", `{"a": 1, "a": 2}`},
			{"a non-mapping root", `[1, 2, 3]`},
			{"an empty document", ``},
			{"broken syntax", `{"a": `},
		} {
			tc := tc
			it("rejects "+tc.name, func() {
				_, err := scenario.Parse([]byte(tc.input))
				Expect(err).To(HaveOccurred())
				Expect(errors.Is(err, scenario.ErrInvalidScenario)).To(BeTrue())
			})
		}

		it("names the offending path", func() {
			_, err := scenario.Parse([]byte(`{"a": {"b": {"c": "x"}}}`))
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("a/b/c"))
		})
	})

	when("Lookup()", func() {
		var root *scenario.Dir

		it.Before(func() {
			var err error
			root, err = scenario.Parse([]byte(`{"a": {"test_x.py": 100, "readme.md": 5}, "test_y.py": 50}`))
			Expect(err).NotTo(HaveOccurred())
		})

		it("returns the root for the empty path", func() {
			node, err := root.Lookup(scenario.ParsePath("/"))
			Expect(err).NotTo(HaveOccurred())
			Expect(node).To(BeIdenticalTo(root))
		})

		it("returns nested files", func() {
			node, err := root.Lookup(scenario.ParsePath("a/test_x.py"))
			Expect(err).NotTo(HaveOccurred())
			Expect(node).To(Equal(scenario.File{Size: 100}))
		})

		it("fails for a missing path", func() {
			_, err := root.Lookup(scenario.ParsePath("b"))
			Expect(errors.Is(err, scenario.ErrPathNotFound)).To(BeTrue())
		})

		it("fails when descending through a file", func() {
			_, err := root.Lookup(scenario.ParsePath("test_y.py/x"))
			Expect(errors.Is(err, scenario.ErrNotDirectory)).To(BeTrue())
		})

		it("fails when a file is requested as a directory", func() {
			_, err := root.LookupDir(scenario.ParsePath("a/readme.md"))
			Expect(errors.Is(err, scenario.ErrNotDirectory)).To(BeTrue())
		})
	})

	when("Walk()", func() {
		it("visits entries depth-first in declaration order", func() {
			root, err := scenario.Parse([]byte(`{"a": {"b": {"c.py": 1}, "d.py": 2}, "e.py": 3}`))
			Expect(err).NotTo(HaveOccurred())

			var seen []string
			Expect(root.Walk(func(parent scenario.Path, e scenario.Entry) error {
				seen = append(seen, parent.Child(e.Name).String())
				return nil
			})).To(Succeed())

			Expect(seen).To(Equal([]string{"a", "a/b", "a/b/c.py", "a/d.py", "e.py"}))
		})
	})

	when("ParsePath()", func() {
		it("normalizes separators and dots", func() {
			Expect(scenario.ParsePath("").IsRoot()).To(BeTrue())
			Expect(scenario.ParsePath(".").IsRoot()).To(BeTrue())
			Expect(scenario.ParsePath("/").IsRoot()).To(BeTrue())
			Expect(scenario.ParsePath("./a//b/").Key()).To(Equal("a/b"))
			Expect(scenario.Root().String()).To(Equal("."))
		})

		it("does not alias the parent when building children", func() {
			parent := make(scenario.Path, 1, 4)
			parent[0] = "a"
			x := parent.Child("x")
			y := parent.Child("y")
			Expect(x.Key()).To(Equal("a/x"))
			Expect(y.Key()).To(Equal("a/y"))
		})
	})

	when("NewDir()", func() {
		it("rejects duplicate names", func() {
			_, err := scenario.NewDir(
				scenario.Entry{Name: "a", Node: scenario.File{Size: 1}},
				scenario.Entry{Name: "a", Node: scenario.File{Size: 2}},
			)
			Expect(errors.Is(err, scenario.ErrInvalidScenario)).To(BeTrue())
		})

		it("rejects names containing separators", func() {
			_, err := scenario.NewDir(scenario.Entry{Name: "a/b", Node: scenario.File{Size: 1}})
			Expect(errors.Is(err, scenario.ErrInvalidScenario)).To(BeTrue())
		})
	})
}

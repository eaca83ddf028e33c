package resource_test

import (
	"testing"

	"go.viam.com/test"

	"go.viam.com/micro-rdk-agent/resource"
)

func TestModel(t *testing.T) {
	for _, tc := range []struct {
		TestName  string
		Namespace resource.ModelNamespace
		Family    string
		Model     string
		Expected  resource.Model
		Err       string
	}{
		{
			"missing namespace",
			"",
			"test",
			"modelA",
			resource.Model{
				Family: resource.ModelFamily{Namespace: "", Name: "test"},
				Name:   "modelA",
			},
			"namespace field for model missing",
		},
		{
			"missing family",
			"acme",
			"",
			"modelA",
			resource.Model{
				Family: resource.ModelFamily{Namespace: "acme", Name: ""},
				Name:   "modelA",
			},
			"model_family field for model missing",
		},
		{
			"missing name",
			"acme",
			"test",
			"",
			resource.Model{
				Family: resource.ModelFamily{Namespace: "acme", Name: "test"},
				Name:   "",
			},
			"name field for model missing",
		},
		{
			"reserved character in model namespace",
			"ac:me",
			"test",
			"modelA",
			resource.Model{
				Family: resource.ModelFamily{Namespace: "ac:me", Name: "test"},
				Name:   "modelA",
			},
			"reserved character : used",
		},
		{
			"valid model",
			"acme",
			"test",
			"modelA",
			resource.Model{
				Family: resource.ModelFamily{Namespace: "acme", Name: "test"},
				Name:   "modelA",
			},
			"",
		},
	} {
		t.Run(tc.TestName, func(t *testing.T) {
			observed := tc.Namespace.WithFamily(tc.Family).WithModel(tc.Model)
			test.That(t, observed, test.ShouldResemble, tc.Expected)
			err := observed.Validate()
			if tc.Err == "" {
				test.That(t, err, test.ShouldBeNil)
			} else {
				test.That(t, err, test.ShouldNotBeNil)
				test.That(t, err.Error(), test.ShouldContainSubstring, tc.Err)
			}
		})
	}
}

func TestModelFromString(t *testing.T) {
	for _, tc := range []struct {
		TestName string
		StrModel string
		Expected resource.Model
		Err      string
	}{
		{
			"valid",
			"acme:test:modelA",
			resource.Model{
				Family: resource.ModelFamily{Namespace: "acme", Name: "test"},
				Name:   "modelA",
			},
			"",
		},
		{
			"valid with special characters and numbers",
			"acme_corp1:test-collection99:model_a2",
			resource.Model{
				Family: resource.ModelFamily{Namespace: "acme_corp1", Name: "test-collection99"},
				Name:   "model_a2",
			},
			"",
		},
		{
			"too few segments",
			"acme:modelA",
			resource.Model{},
			"invalid model string",
		},
		{
			"too many segments",
			"acme:test:extra:modelA",
			resource.Model{},
			"invalid model string",
		},
	} {
		t.Run(tc.TestName, func(t *testing.T) {
			m, err := resource.NewModelFromString(tc.StrModel)
			if tc.Err == "" {
				test.That(t, err, test.ShouldBeNil)
				test.That(t, m, test.ShouldResemble, tc.Expected)
				// Testable property (spec.md §8): round trip through String().
				test.That(t, m.String(), test.ShouldEqual, tc.StrModel)
			} else {
				test.That(t, err, test.ShouldNotBeNil)
				test.That(t, err.Error(), test.ShouldContainSubstring, tc.Err)
			}
		})
	}
}

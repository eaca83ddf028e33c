package resource

import (
	"testing"

	"go.viam.com/test"
)

func TestNewName(t *testing.T) {
	type testCase struct {
		api          API
		nameString   string
		expectedName Name
	}
	tcs := []testCase{
		{
			api:          APINamespaceRDK.WithComponentType("camera"),
			nameString:   "cam-1",
			expectedName: Name{API: API{Type: APIType{Namespace: APINamespace("rdk"), Name: "component"}, SubtypeName: "camera"}, Remote: "", Name: "cam-1"},
		},
		{
			api:          APINamespaceRDK.WithComponentType("camera"),
			nameString:   "remote:cam-1",
			expectedName: Name{API: API{Type: APIType{Namespace: APINamespace("rdk"), Name: "component"}, SubtypeName: "camera"}, Remote: "remote", Name: "cam-1"},
		},
		{
			api:          APINamespaceRDK.WithComponentType("camera"),
			nameString:   "remoteA:remoteB:cam-1",
			expectedName: Name{API: API{Type: APIType{Namespace: APINamespace("rdk"), Name: "component"}, SubtypeName: "camera"}, Remote: "remoteA:remoteB", Name: "cam-1"},
		},
		{
			api:          APINamespaceRDK.WithServiceType("motion"),
			nameString:   "builtin",
			expectedName: Name{API: API{Type: APIType{Namespace: APINamespace("rdk"), Name: "service"}, SubtypeName: "motion"}, Remote: "", Name: "builtin"},
		},
	}
	for _, tc := range tcs {
		test.That(t, NewName(tc.api, tc.nameString), test.ShouldResemble, tc.expectedName)
	}
}

func TestNameString(t *testing.T) {
	n := NewName(APINamespaceRDK.WithComponentType("motor"), "remoteA:m1")
	test.That(t, n.String(), test.ShouldEqual, "remoteA:m1")
	test.That(t, n.ShortName(), test.ShouldEqual, "m1")
	test.That(t, n.ContainingRemoteID(), test.ShouldEqual, "remoteA")

	local := NewName(APINamespaceRDK.WithComponentType("motor"), "m1")
	test.That(t, local.String(), test.ShouldEqual, "m1")
	test.That(t, local.ContainingRemoteID(), test.ShouldEqual, "")
}

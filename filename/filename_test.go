package filename

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateEnvAndRunType(t *testing.T) {
	os.Setenv("EVIO_TEST_USER", "alice")
	defer os.Unsetenv("EVIO_TEST_USER")

	name, err := Generate("my_$(EVIO_TEST_USER)_%s_run#%d", Context{
		RunNumber: 2,
		RunType:   "MyRunType",
	})
	require.NoError(t, err)
	require.Equal(t, "my_alice_MyRunType_run#2", name)
}

func TestGenerateUnsetEnvVarExpandsEmpty(t *testing.T) {
	os.Unsetenv("EVIO_TEST_UNSET_VAR")

	name, err := Generate("$(EVIO_TEST_UNSET_VAR)file", Context{})
	require.NoError(t, err)
	require.Equal(t, "file", name)
}

func TestGenerateThreeSpecifiersAndStreamSuffix(t *testing.T) {
	name, err := Generate("my_$(USER)_%s_run#%d_stream#%d_.%06d", Context{
		RunNumber:   2,
		StreamID:    3,
		StreamCount: 4,
		SplitNumber: 1,
		RunType:     "MyRunType",
		Splitting:   true,
	})
	require.NoError(t, err)
	require.Contains(t, name, "run#2_stream#3_.000001")
	require.NotContains(t, name, ".stream3")
}

func TestGenerateAppendsMissingSplitSpecifier(t *testing.T) {
	name, err := Generate("my_run_%d", Context{
		RunNumber:   7,
		SplitNumber: 2,
		Splitting:   true,
	})
	require.NoError(t, err)
	require.Equal(t, "my_run_7_2", name)
}

func TestGenerateAppendsStreamSuffixWhenNotEmbedded(t *testing.T) {
	name, err := Generate("my_run_%d", Context{
		RunNumber:   7,
		StreamID:    5,
		StreamCount: 2,
	})
	require.NoError(t, err)
	require.Equal(t, "my_run_7.stream5", name)
}

func TestGenerateTooManySpecifiersFails(t *testing.T) {
	_, err := Generate("%d_%d_%d_%d", Context{})
	require.Error(t, err)
}

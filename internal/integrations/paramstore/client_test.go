package paramstore

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/require"
)

// fakeAPI is a simple fake implementing ssmAPI for tests.
type fakeAPI struct {
	values map[string]string
	err    error
	calls  [][]string
}

func (f *fakeAPI) GetParameters(_ context.Context, in *ssm.GetParametersInput, _ ...func(*ssm.Options)) (*ssm.GetParametersOutput, error) {
	f.calls = append(f.calls, in.Names)
	if f.err != nil {
		return nil, f.err
	}
	out := &ssm.GetParametersOutput{}
	for _, n := range in.Names {
		v, ok := f.values[n]
		if !ok {
			out.InvalidParameters = append(out.InvalidParameters, n)
			continue
		}
		out.Parameters = append(out.Parameters, types.Parameter{Name: strPtr(n), Value: strPtr(v)})
	}
	return out, nil
}

func strPtr(s string) *string { return &s }

func TestGetParameters_HappyPath(t *testing.T) {
	api := &fakeAPI{values: map[string]string{
		"/assistant/webhook/ask_url":    "http://ask",
		"/assistant/webhook/report_url": "http://report",
	}}
	client, err := New(api)
	require.NoError(t, err)

	got, err := client.GetParameters(context.Background(), []string{"/assistant/webhook/ask_url", " /assistant/webhook/report_url "})
	require.NoError(t, err)
	require.Equal(t, map[string]string{
		"/assistant/webhook/ask_url":    "http://ask",
		"/assistant/webhook/report_url": "http://report",
	}, got)
	require.Len(t, api.calls, 1)
}

func TestGetParameters_MissingNamesAreOmitted(t *testing.T) {
	api := &fakeAPI{values: map[string]string{"/a": "1"}}
	client, err := New(api)
	require.NoError(t, err)

	got, err := client.GetParameters(context.Background(), []string{"/a", "/missing"})
	require.NoError(t, err)
	require.Equal(t, map[string]string{"/a": "1"}, got)
}

func TestGetParameters_Batches(t *testing.T) {
	values := map[string]string{}
	names := make([]string, 0, 23)
	for i := 0; i < 23; i++ {
		n := fmt.Sprintf("/p/%d", i)
		values[n] = fmt.Sprint(i)
		names = append(names, n)
	}
	api := &fakeAPI{values: values}
	client, err := New(api)
	require.NoError(t, err)

	got, err := client.GetParameters(context.Background(), names)
	require.NoError(t, err)
	require.Len(t, got, 23)
	require.Len(t, api.calls, 3)
	require.Len(t, api.calls[2], 3)
}

func TestGetParameters_ApiError(t *testing.T) {
	client, err := New(&fakeAPI{err: errors.New("boom")})
	require.NoError(t, err)
	_, err = client.GetParameters(context.Background(), []string{"/a"})
	require.Error(t, err)
	require.ErrorContains(t, err, "boom")
}

func TestGetParameters_ClientNotInitialized(t *testing.T) {
	_, err := (&Client{}).GetParameters(context.Background(), []string{"/a"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "not initialized")
}

func TestGetParameters_EmptyNames(t *testing.T) {
	client, err := New(&fakeAPI{})
	require.NoError(t, err)
	_, err = client.GetParameters(context.Background(), []string{"  "})
	require.Error(t, err)
	require.Contains(t, err.Error(), "required")
}

func TestNew_NilAPI(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "must not be nil")
}

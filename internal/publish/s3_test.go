package publish

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menuboard/internal"
	"menuboard/internal/config"
	"menuboard/internal/pipeline"
)

type putCall struct {
	bucket, key, contentType string
	body                     []byte
}

type fakePutter struct {
	calls  []putCall
	failOn string
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	key := aws.ToString(in.Key)
	if key == f.failOn {
		return nil, errors.New("access denied")
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.calls = append(f.calls, putCall{bucket: aws.ToString(in.Bucket), key: key, contentType: aws.ToString(in.ContentType), body: body})
	return &s3.PutObjectOutput{}, nil
}

func feed() pipeline.Feed {
	items := []internal.Item{{Category: "Cafés", Name: "Latte", BasePrice: "$ 300", Active: true}}
	return pipeline.Feed{Generation: 2, Items: items, Menu: []internal.CategoryGroup{{Category: "Cafés", Items: items}}}
}

func TestPublishUploadsMenu(t *testing.T) {
	putter := &fakePutter{}
	p := NewPublisher(putter, "menus", "/local/centro/", nil)

	keys, err := p.Publish(context.Background(), feed())
	require.NoError(t, err)
	assert.Equal(t, []string{"local/centro/menu.json", "local/centro/menu.xlsx"}, keys)

	require.Len(t, putter.calls, 2)
	assert.Equal(t, "menus", putter.calls[0].bucket)
	assert.Equal(t, contentJSON, putter.calls[0].contentType)
	assert.Contains(t, string(putter.calls[0].body), `"Latte"`)
	assert.Equal(t, contentXLSX, putter.calls[1].contentType)
	assert.Equal(t, "PK", string(putter.calls[1].body[:2]))
}

func TestPublishWithoutPrefix(t *testing.T) {
	putter := &fakePutter{}
	keys, err := NewPublisher(putter, "menus", "", nil).Publish(context.Background(), feed())
	require.NoError(t, err)
	assert.Equal(t, []string{"menu.json", "menu.xlsx"}, keys)
}

func TestPublishStopsOnError(t *testing.T) {
	putter := &fakePutter{failOn: "menu.xlsx"}
	keys, err := NewPublisher(putter, "menus", "", nil).Publish(context.Background(), feed())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3://menus/menu.xlsx")
	assert.Equal(t, []string{"menu.json"}, keys)
}

func TestNewS3PublisherNeedsBucket(t *testing.T) {
	_, err := NewS3Publisher(context.Background(), config.Config{}, nil)
	require.Error(t, err)
}

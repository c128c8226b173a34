package thumbnail

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotification_Unmarshal(t *testing.T) {
	payload := []byte(`{
		"EventName": "s3:ObjectCreated:Put",
		"Records": [
			{
				"eventVersion": "2.0",
				"eventSource": "minio:s3",
				"eventName": "s3:ObjectCreated:Put",
				"s3": {
					"bucket": {"name": "uploads", "arn": "arn:aws:s3:::uploads"},
					"object": {"key": "my+photo.png", "size": 1048576, "contentType": "image/png"}
				}
			},
			{
				"eventName": "s3:ObjectCreated:CompleteMultipartUpload",
				"s3": {
					"bucket": {"name": "uploads"},
					"object": {"key": "videos%2Fclip.png", "size": 2048}
				}
			}
		]
	}`)

	var n Notification
	require.NoError(t, json.Unmarshal(payload, &n))

	require.Len(t, n.Records, 2)
	assert.Equal(t, "s3:ObjectCreated:Put", n.Records[0].EventName)
	assert.Equal(t, "uploads", n.Records[0].S3.Bucket.Name)
	assert.Equal(t, "my+photo.png", n.Records[0].S3.Object.Key)
	assert.Equal(t, int64(1048576), n.Records[0].S3.Object.Size)
	assert.Equal(t, "videos%2Fclip.png", n.Records[1].S3.Object.Key)
}

func TestNotification_UnmarshalEmpty(t *testing.T) {
	var n Notification
	require.NoError(t, json.Unmarshal([]byte(`{"Records": []}`), &n))
	assert.Empty(t, n.Records)
}

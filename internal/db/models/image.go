package models

// Image upload states.
const (
	StatusPending  = "pending"
	StatusComplete = "complete"
)

// Image is the metadata row of one uploaded picture.
// The same struct is persisted to DynamoDB (dynamodbav) and to the sql stores (gorm).
type Image struct {
	ImageID          string  `json:"imageId"              dynamodbav:"imageId"              gorm:"primaryKey;size:26"`
	Owner            string  `json:"owner"                dynamodbav:"owner"                gorm:"index;size:255"`
	Title            string  `json:"title"                dynamodbav:"title"                gorm:"uniqueIndex;size:255"`
	OriginalFileName string  `json:"originalFileName"     dynamodbav:"originalFileName"     gorm:"size:1024"`
	Dimensions       *string `json:"dimensions,omitempty" dynamodbav:"dimensions,omitempty" gorm:"size:64"`
	FileSize         *int64  `json:"fileSize,omitempty"   dynamodbav:"fileSize,omitempty"`
	DevName          string  `json:"devName"              dynamodbav:"devName"              gorm:"index;size:255"`
	UploadTime       string  `json:"uploadTime"           dynamodbav:"uploadTime"           gorm:"size:40"`
	S3Key            string  `json:"s3Key"                dynamodbav:"s3Key"                gorm:"size:2048"`
	PublicURL        string  `json:"publicUrl"            dynamodbav:"publicUrl"            gorm:"size:2048"`
	Status           string  `json:"status,omitempty"     dynamodbav:"status,omitempty"     gorm:"size:16"`
}

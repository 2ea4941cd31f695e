package artifactModel

import "fmt"

// DataIngestionArtifact points at the partitions written by a run. It holds no data.
type DataIngestionArtifact struct {
	TrainedFilePath string `json:"trained_file_path"`
	TestFilePath    string `json:"test_file_path"`
}

func (a DataIngestionArtifact) String() string {
	return fmt.Sprintf("DataIngestionArtifact(trained_file_path=%s, test_file_path=%s)", a.TrainedFilePath, a.TestFilePath)
}

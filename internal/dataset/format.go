package dataset

import (
	"log"
	"math"
	"path/filepath"

	"github.com/posetools/trainset/internal/annotations"
	"github.com/posetools/trainset/internal/imagemeta"
)

// #region build-records

// buildTrainingRecords assembles the row-level training structure for the
// chosen train indices. Per frame: probe the image dimensions, drop
// keypoints with missing coordinates, drop keypoints outside
// [0, width) x [0, height), and exclude the frame entirely when no keypoint
// survives. Frames whose image cannot be read are skipped with a log line.
func buildTrainingRecords(
	table *annotations.Table,
	trainIndices []int,
	projectPath string,
	images *imagemeta.Reader,
) []TrainingRecord {
	nBodyparts := len(table.Bodyparts)
	records := make([]TrainingRecord, 0, len(trainIndices))

	for _, i := range trainIndices {
		ref := table.Refs[i]
		shape, err := images.Shape(filepath.Join(projectPath, filepath.FromSlash(ref.RelPath())))
		if err != nil {
			log.Printf("skipping frame %s: %v", ref.RelPath(), err)
			continue
		}

		row := table.Row(i)
		joints := make([][3]int, 0, nBodyparts)
		for part := 0; part < nBodyparts; part++ {
			x, y := row[2*part], row[2*part+1]
			if math.IsNaN(x) || math.IsNaN(y) {
				continue
			}
			xi, yi := int(x), int(y)
			if xi < 0 || xi >= shape.Width || yi < 0 || yi >= shape.Height {
				continue
			}
			joints = append(joints, [3]int{part, xi, yi})
		}
		if len(joints) == 0 {
			continue
		}

		records = append(records, TrainingRecord{
			Image:  ref.RelPath(),
			Size:   [3]int{shape.Channels, shape.Height, shape.Width},
			Joints: joints,
		})
	}
	return records
}

// #endregion build-records

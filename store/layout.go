package store

import (
	"path/filepath"
	"strconv"

	"github.com/segrab-cli/segrab/constant"
	"github.com/segrab-cli/segrab/source"
)

// Stage is a pipeline stage whose completion is recorded on disk.
type Stage int

const (
	// StageFetched holds raw segment bytes as served by the origin.
	StageFetched Stage = iota
	// StageConverted holds segments normalized by the media tool.
	StageConverted
)

func (s Stage) String() string {
	if s == StageConverted {
		return "converted"
	}
	return "fetched"
}

// Layout locates every artifact of one target.
//
//	<WorkDir>/raw/<id><RawExt>
//	<WorkDir>/converted/<id><ConvertedExt>
//	<WorkDir>/segments.txt
//	<WorkDir>/.lock
//	<Output>
type Layout struct {
	WorkDir      string `json:"work_dir"`
	Output       string `json:"output"`
	RawExt       string `json:"raw_ext"`
	ConvertedExt string `json:"converted_ext"`
}

// NewLayout places the work directory of target under workRoot and its merged video under downloadsRoot.
func NewLayout(workRoot, downloadsRoot string, target source.Target, rawExt string) Layout {
	name := target.Dirname()
	return Layout{
		WorkDir:      filepath.Join(workRoot, name),
		Output:       filepath.Join(downloadsRoot, name, constant.OutputName+constant.ConvertedExt),
		RawExt:       rawExt,
		ConvertedExt: constant.ConvertedExt,
	}
}

// StageDir returns the directory holding artifacts of stage.
func (l Layout) StageDir(stage Stage) string {
	if stage == StageConverted {
		return filepath.Join(l.WorkDir, constant.ConvertedDir)
	}
	return filepath.Join(l.WorkDir, constant.RawDir)
}

// SegmentPath returns where segment id is stored once stage completes.
func (l Layout) SegmentPath(id int, stage Stage) string {
	return filepath.Join(l.StageDir(stage), l.segmentName(id, stage))
}

// RelSegmentPath is SegmentPath relative to the work directory,
// which is how the concat list refers to segments.
func (l Layout) RelSegmentPath(id int, stage Stage) string {
	dir := constant.RawDir
	if stage == StageConverted {
		dir = constant.ConvertedDir
	}
	return filepath.ToSlash(filepath.Join(dir, l.segmentName(id, stage)))
}

// TempSegmentPath is where the media tool writes a segment before it is committed.
// The extension is kept last so the tool can infer the container.
func (l Layout) TempSegmentPath(id int, stage Stage) string {
	return filepath.Join(l.StageDir(stage), strconv.Itoa(id)+constant.PartialSuffix+l.ext(stage))
}

// ListPath returns the path of the concat list.
func (l Layout) ListPath() string {
	return filepath.Join(l.WorkDir, constant.ConcatList)
}

// LockPath returns the path of the lock file guarding the work directory.
func (l Layout) LockPath() string {
	return filepath.Join(l.WorkDir, constant.LockFile)
}

// TempOutput is where the merged video is written before it is committed.
func (l Layout) TempOutput() string {
	ext := filepath.Ext(l.Output)
	return l.Output[:len(l.Output)-len(ext)] + constant.PartialSuffix + ext
}

func (l Layout) segmentName(id int, stage Stage) string {
	return strconv.Itoa(id) + l.ext(stage)
}

func (l Layout) ext(stage Stage) string {
	if stage == StageConverted {
		return l.ConvertedExt
	}
	return l.RawExt
}

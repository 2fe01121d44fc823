package main

import (
	"context"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"google.golang.org/protobuf/types/known/durationpb"

	"go.viam.com/spotbridge/config"
	"go.viam.com/spotbridge/imageclient"
	"go.viam.com/spotbridge/imagesource"
	"go.viam.com/spotbridge/logging"
	"go.viam.com/spotbridge/rimage"
	"go.viam.com/spotbridge/ros"
	"go.viam.com/spotbridge/spatialmath"
	"go.viam.com/spotbridge/spotapi"
)

const unitQuaternionTolerance = 1e-6

// recordedBatch replays a single recorded response.
type recordedBatch struct {
	resp *spotapi.GetImageResponse
}

func (b recordedBatch) GetImages(ctx context.Context, req *spotapi.GetImageRequest) (*spotapi.GetImageResponse, error) {
	return b.resp, nil
}

// fixedSkew reports the same clock skew for every batch.
type fixedSkew time.Duration

func (s fixedSkew) GetClockSkew(ctx context.Context) (*durationpb.Duration, error) {
	return durationpb.New(time.Duration(s)), nil
}

// convertedImage is what gets printed for each image in a batch.
type convertedImage struct {
	Source  string         `json:"source"`
	Topic   string         `json:"topic"`
	File    string         `json:"file"`
	Header  ros.Header     `json:"header"`
	Info    ros.CameraInfo `json:"camera_info"`
	Encoded string         `json:"encoding"`
}

type conversionSummary struct {
	Images     []convertedImage       `json:"images"`
	Transforms []ros.TransformStamped `json:"transforms"`
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String(flagConfig)
	if path == "" {
		return &config.Config{}, nil
	}
	return config.Read(path)
}

func readBatch(path string) (*spotapi.GetImageResponse, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read batch %q", path)
	}
	var resp spotapi.GetImageResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, errors.Wrapf(err, "cannot parse batch %q", path)
	}
	return &resp, nil
}

// warnOnNonUnitRotations flags snapshot edges whose rotations would be published unnormalized.
func warnOnNonUnitRotations(resp *spotapi.GetImageResponse, logger logging.Logger) {
	for _, imgResp := range resp.ImageResponses {
		for child, edge := range imgResp.Shot.TransformsSnapshot.ChildToParentEdgeMap {
			if !spatialmath.NewPoseFromSpot(edge.ParentTformChild).IsUnit(unitQuaternionTolerance) {
				logger.Warnw("snapshot edge rotation is not a unit quaternion",
					"source", imgResp.Source.Name, "child", child, "parent", edge.ParentFrameName)
			}
		}
	}
}

// ConvertAction converts a recorded batch.
func ConvertAction(c *cli.Context) error {
	conf, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet(flagRobotName) {
		conf.RobotName = c.String(flagRobotName)
		if err := conf.Validate(); err != nil {
			return err
		}
	}
	logger := newLogger(c)
	summary, err := convertBatch(c.Context, c.Path(flagBatch), c.Path(flagOut), c.Duration(flagSkew), conf, logger)
	if err != nil {
		return multierr.Combine(err, logger.Sync())
	}

	encoder := json.NewEncoder(c.App.Writer)
	encoder.SetIndent("", "  ")
	return multierr.Combine(encoder.Encode(summary), logger.Sync())
}

func convertBatch(
	ctx context.Context,
	batchPath, outDir string,
	skew time.Duration,
	conf *config.Config,
	logger logging.Logger,
) (*conversionSummary, error) {
	resp, err := readBatch(batchPath)
	if err != nil {
		return nil, err
	}
	warnOnNonUnitRotations(resp, logger)

	client := imageclient.New(recordedBatch{resp: resp}, fixedSkew(skew), conf.ClientOptions(), logger)
	result, err := client.GetImages(ctx, &spotapi.GetImageRequest{})
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return nil, errors.Wrapf(err, "cannot create output directory %q", outDir)
	}

	sources := make([]imagesource.ImageSource, 0, len(result.Images))
	for src := range result.Images {
		sources = append(sources, src)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].Topic() < sources[j].Topic() })

	summary := &conversionSummary{Transforms: result.Transforms}
	for _, src := range sources {
		img := result.Images[src]
		file := filepath.Join(outDir, strings.ReplaceAll(src.Topic(), "/", "_")+".png")
		if err := writePNG(file, img.Image); err != nil {
			return nil, errors.Wrapf(err, "source %v", src)
		}
		logger.Debugw("wrote image", "source", src.String(), "file", file)
		summary.Images = append(summary.Images, convertedImage{
			Source:  src.String(),
			Topic:   src.Topic(),
			File:    file,
			Header:  img.Image.Header,
			Info:    img.Info,
			Encoded: img.Image.Encoding,
		})
	}
	sort.Slice(summary.Transforms, func(i, j int) bool {
		return summary.Transforms[i].ChildFrameID < summary.Transforms[j].ChildFrameID
	})
	return summary, nil
}

func writePNG(path string, img *ros.Image) (err error) {
	stdImg, err := rimage.ToStdImage(img)
	if err != nil {
		return err
	}
	//nolint:gosec
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	return png.Encode(f, stdImg)
}

// SourcesAction prints the robot source name and topic of every configured image source.
func SourcesAction(c *cli.Context) error {
	conf, err := loadConfig(c)
	if err != nil {
		return err
	}
	for _, src := range imagesource.List(conf.SourceOptions()) {
		name, err := imagesource.ToVendorName(src)
		if err != nil {
			return err
		}
		if _, err := c.App.Writer.Write([]byte(name + "\t" + src.Topic() + "\n")); err != nil {
			return err
		}
	}
	return nil
}

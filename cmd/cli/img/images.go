// Package img generates the witness portraits shown on the witness comparison page.
package img

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"strings"

	"github.com/evidenx/evidenx/internal/errors"
	"github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"
)

var Group = &cobra.Group{
	ID:    "img",
	Title: "Image operations",
}

func init() {
	Portrait.Flags().String("out", "./witness.png", "path to generated image file")
}

// portraitPrompt keeps the portraits neutral so they can't be mistaken for photos of the real witnesses.
func portraitPrompt(description string) string {
	return "Neutral flat illustration of a witness for an investigation dashboard, head and shoulders, plain " +
		"background, no text. The witness: " + description
}

var Portrait = &cobra.Command{
	Use:     "portrait [description]",
	GroupID: "img",
	Short:   "Generate a witness portrait",
	Long:    `Generates an illustrated witness portrait with Dall-E for the witness comparison page`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return errors.New("missing OPENAI_API_KEY")
		}
		outPath, err := cmd.Flags().GetString("out")
		if err != nil {
			return errors.Wrap(err, "get out flag")
		}
		c := openai.NewClient(apiKey)

		request := openai.ImageRequest{
			Model:          openai.CreateImageModelDallE3,
			Prompt:         portraitPrompt(strings.Join(args, " ")),
			Size:           openai.CreateImageSize1024x1024,
			ResponseFormat: openai.CreateImageResponseFormatB64JSON,
			N:              1,
		}
		response, err := c.CreateImage(cmd.Context(), request)
		if err != nil {
			return errors.Wrap(err, "create image")
		}
		if len(response.Data) == 0 {
			return errors.New("no image in response")
		}

		imgBytes, err := base64.StdEncoding.DecodeString(response.Data[0].B64JSON)
		if err != nil {
			return errors.Wrap(err, "decode base64 image")
		}
		imgData, err := png.Decode(bytes.NewReader(imgBytes))
		if err != nil {
			return errors.Wrap(err, "decode png")
		}

		file, err := os.Create(outPath)
		if err != nil {
			return errors.Wrap(err, "create image file", slog.String("path", outPath))
		}
		defer func() {
			_ = file.Close()
		}()
		if err = png.Encode(file, imgData); err != nil {
			return errors.Wrap(err, "encode png", slog.String("path", outPath))
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "The portrait was saved as %s\n", outPath)
		return nil
	},
}

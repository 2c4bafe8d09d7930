package cmd

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/segrab-cli/segrab/color"
	"github.com/segrab-cli/segrab/constant"
	"github.com/segrab-cli/segrab/icon"
	"github.com/segrab-cli/segrab/key"
	"github.com/segrab-cli/segrab/media"
	"github.com/segrab-cli/segrab/style"
	"github.com/spf13/viper"
)

// checkFFmpeg verifies the media tool is installed and explains how to get it otherwise.
func checkFFmpeg() error {
	err := media.Exec{Path: viper.GetString(key.FFmpegPath)}.Available()
	if err == nil {
		return nil
	}

	printMissingDependency("ffmpeg")
	return errors.Join(errHandled, err)
}

func printMissingDependency(dep string) {
	var installCmd string
	switch runtime.GOOS {
	case constant.Darwin:
		installCmd = "brew install " + dep
	case constant.Linux:
		installCmd = "sudo apt install " + dep
	case constant.Windows:
		installCmd = "scoop install " + dep
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color.HiRed).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(color.HiRed).Render(fmt.Sprintf("%s Error: Missing Dependency", icon.Get(icon.Fail)))
	body := fmt.Sprintf("The required dependency '%s' was not found in your PATH.\nSet %s to its location if it is installed elsewhere.", dep, style.Fg(color.Purple)(key.FFmpegPath))

	suggestion := ""
	if installCmd != "" {
		suggestion = fmt.Sprintf("\n\nTo install it, try running:\n  %s", style.New().Foreground(color.Accent).Bold(true).Render(installCmd))
	}

	_, _ = fmt.Fprintln(os.Stderr, box.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			body,
			suggestion,
		),
	))
}

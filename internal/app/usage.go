package app

import "strings"

const usageTemplate = `A small image toolbox.
Usage:
{prog} [-h | --help | -?]
    Display this message and exit.

{prog} <input_filename> [-v | --verbose]
                        [-s | --show]
                        [(-b | --blur) <percent>]
                        [(-d | --dim) <percent>]
                        [(-c | --crop) [(<W>x<H> | <W>:<H>) ?= 1:1]]
                        [(-l | --enlarge) [<W>:<H> ?= 1:1]
                                          [<blur_percent> ?= 50]]
                        [(-r | --resize) (min | max) <side>]
                        [<output_filename>]
    Flags:
        -v, --verbose -- If present, {prog} will output more info
                           during execution.
    Variables:
        <input_filename>: String  -- Initial image. s3://bucket/key reads
                                       from object storage.
        <percent>: Integer        -- A percentage
                                       (usually should be between 0 and 100).
        <W>: Integer              -- Width of an image or a ratio
                                       (depending on a separator).
        <H>: Integer              -- Height of an image or a ratio
                                       (depending on a separator).
        <blur_percent>: Integer   -- A percentage used for blur during
                                       enlargement.
        <side>: Integer           -- Minimum or maximum
                                       (depending on a previous argument)
                                       side of resulting image.
        <output_filename>: String -- Resulting image. It should contain at
                                       least one dot ('.'). The extension
                                       picks the format.
    Commands:
        -s, --show
                    -- Display current image.
        -b, --blur <percent>
                    -- Blur by <percent>%.
        -d, --dim <percent>
                    -- Decrease brightness by <percent>%.
        -c, --crop [(<W>x<H> | <W>:<H>) ?= 1:1]
                    -- Centered crop. If <W>x<H> is given, the image is cropped
                         to that rectangle in the center. If <W>:<H> is given,
                         the image is cropped to fit that aspect ratio. If the
                         argument is omitted, 1:1 is used.
        -l, --enlarge [<W>:<H> ?= 1:1] [<blur_percent> ?= 50]
                    -- Enlarge the image to fit the aspect ratio, filling the
                         margins with a blurred copy blurred by <blur_percent>.
                         Both arguments are optional and may come in any order.
        -r, --resize (min | max) <side>
                    -- Resize one side of the image, keeping the aspect ratio.
                         "min" makes the smallest side <side> pixels and "max"
                         makes the largest side <side> pixels.
        <output_filename>
                    -- Save the current image to <output_filename>.
    Also:
        Commands can be combined in any order and are applied sequentially.
        The input image must always be the first argument.
`

// Usage renders the help text for prog.
func Usage(prog string) string {
	return strings.ReplaceAll(usageTemplate, "{prog}", prog)
}

func isHelp(arg string) bool {
	switch arg {
	case "-h", "--help", "-?":
		return true
	}
	return false
}

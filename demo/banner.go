package demo

import "context"

const bannerText = "" +
	"************************************************************\n" +
	"*                                                          *\n" +
	"*   L E A R N   T O   T H I N K   L I K E   A   C H I P    *\n" +
	"*                                                          *\n" +
	"*      V S D S Q U A D R O N  F P G A   M I N I            *\n" +
	"*                                                          *\n" +
	"*B R I N G S   R I S C - V   T O   V S D  C L A S S R O O M*\n" +
	"*                                                          *\n" +
	"************************************************************\n\n"

// clearScreen erases the terminal and homes the cursor.
const clearScreen = "\033[2J\033[H"

type BannerOptions struct {
	Wait int
	// Rounds counts print/clear cycles; 0 runs until ctx is done.
	Rounds int
}

func DefaultBannerOptions() BannerOptions {
	return BannerOptions{Wait: 700000}
}

// Banner prints the banner, waits, clears the screen, waits, and repeats.
func Banner(ctx context.Context, env Env, o BannerOptions) error {
	for round := 0; o.Rounds == 0 || round < o.Rounds; round++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := env.Console.SendString(bannerText); err != nil {
			return err
		}
		env.delay(o.Wait)
		if err := env.Console.SendString(clearScreen); err != nil {
			return err
		}
		env.delay(o.Wait)
	}
	return nil
}

package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"basicrv/console"
	"basicrv/mmio"
	"basicrv/sim"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Interactive register monitor for the simulated board",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rl, err := readline.NewEx(&readline.Config{
			Prompt:          "basicrv> ",
			InterruptPrompt: "^C",
			EOFPrompt:       "quit",
		})
		if err != nil {
			return fmt.Errorf("failed to create readline: %w", err)
		}
		defer rl.Close()

		m, closeTrace, err := newMachine(rl.Stdout())
		if err != nil {
			return err
		}
		defer closeTrace()

		mon := newMonitor(m, rl.Stdout(), cfg.Console.PollTimeout)
		mon.help()
		for {
			line, err := rl.Readline()
			if errors.Is(err, readline.ErrInterrupt) {
				if line == "" {
					return nil
				}
				continue
			}
			if err != nil { // io.EOF
				return nil
			}
			quit, err := mon.exec(line)
			if err != nil {
				fmt.Fprintf(rl.Stderr(), "error: %v\n", err)
			}
			if quit {
				return nil
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

// monitor executes one command line at a time against a board.
type monitor struct {
	m    *sim.Machine
	regs *mmio.Handle
	con  *console.Writer
	out  io.Writer
}

func newMonitor(m *sim.Machine, out io.Writer, timeout time.Duration) *monitor {
	if timeout == 0 {
		timeout = time.Second
	}
	regs := m.Registers()
	return &monitor{
		m:    m,
		regs: regs,
		con:  console.New(regs, console.WithTimeout(timeout)),
		out:  out,
	}
}

const monitorHelp = `Commands:
  regs                   dump all peripheral registers
  r <reg>                read a register (name or offset)
  w <reg> <value>        write a register
  p "<format>" [args]    print through the UART console (%s %x %d %c)
  in <value>             drive the GPIO input pins
  tick <cycles>          advance simulated time
  stall on|off           hold the UART busy
  pwm                    show the PWM output state
  help                   show this help
  quit                   leave the monitor

Arguments are separated by spaces or tabs. Only double quotes group words;
inside them Go escapes apply (\n, \t, \", \x41). Single quotes are not
grouping: 'c' (exactly one character) is a %c argument. Numbers take 0x,
0o and 0b prefixes.
`

func (mon *monitor) help() { io.WriteString(mon.out, monitorHelp) }

func (mon *monitor) exec(line string) (quit bool, err error) {
	toks, err := splitArgs(line)
	if err != nil || len(toks) == 0 {
		return false, err
	}
	cmd := toks[0].text
	args := make([]string, 0, len(toks)-1)
	for _, t := range toks[1:] {
		args = append(args, t.text)
	}

	switch cmd {
	case "quit", "exit", "q":
		return true, nil
	case "help", "?":
		mon.help()
	case "regs":
		for _, off := range mmio.Offsets() {
			if off == mmio.UARTData {
				continue // write-only
			}
			fmt.Fprintf(mon.out, "%-10s +0x%02X  0x%08X\n", off, uint32(off), mon.regs.Read(off))
		}
	case "r":
		if len(args) != 1 {
			return false, errors.New("usage: r <reg>")
		}
		off, err := mmio.ParseOffset(args[0])
		if err != nil {
			return false, err
		}
		fmt.Fprintf(mon.out, "%s = 0x%08X\n", off, mon.regs.Read(off))
	case "w":
		if len(args) != 2 {
			return false, errors.New("usage: w <reg> <value>")
		}
		off, err := mmio.ParseOffset(args[0])
		if err != nil {
			return false, err
		}
		v, err := parseUint32(args[1])
		if err != nil {
			return false, err
		}
		mon.regs.Write(off, v)
	case "p":
		if len(args) == 0 {
			return false, errors.New(`usage: p "<format>" [args]`)
		}
		pargs := make([]console.Arg, 0, len(args)-1)
		for _, t := range toks[2:] {
			if t.quoted {
				pargs = append(pargs, console.Str(t.text))
				continue
			}
			pargs = append(pargs, parseArg(t.text))
		}
		return false, mon.con.Printf(args[0], pargs...)
	case "in":
		if len(args) != 1 {
			return false, errors.New("usage: in <value>")
		}
		v, err := parseUint32(args[0])
		if err != nil {
			return false, err
		}
		mon.m.GPIO.SetInputs(v)
	case "tick":
		if len(args) != 1 {
			return false, errors.New("usage: tick <cycles>")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return false, err
		}
		mon.m.Delay(n)
	case "stall":
		if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
			return false, errors.New("usage: stall on|off")
		}
		mon.m.UART.Stall(args[0] == "on")
	case "pwm":
		level := "low"
		if mon.m.PWM.Output() {
			level = "high"
		}
		fmt.Fprintf(mon.out, "output=%s duty=%.1f%% status=0x%X\n",
			level, 100*mon.m.PWM.DutyRatio(), mon.regs.Read(mmio.PWMStatus))
	default:
		return false, fmt.Errorf("unknown command %q (try help)", cmd)
	}
	return false, nil
}

func parseUint32(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("bad value %q", s)
	}
	return uint32(v), nil
}

// parseArg turns a token into a console argument: integers become Int (or
// Uint above MaxInt32), 'c' becomes Char, everything else is a string.
func parseArg(s string) console.Arg {
	if len(s) == 3 && s[0] == '\'' && s[2] == '\'' {
		return console.Char(s[1])
	}
	if v, err := strconv.ParseInt(s, 0, 64); err == nil {
		if v >= -1<<31 && v < 1<<31 {
			return console.Int(int32(v))
		}
		if v >= 0 && v < 1<<32 {
			return console.Uint(uint32(v))
		}
	}
	return console.Str(s)
}

type token struct {
	text   string
	quoted bool
}

// splitArgs splits on spaces; double-quoted tokens use Go escape rules.
func splitArgs(line string) ([]token, error) {
	var out []token
	for i := 0; i < len(line); {
		switch {
		case line[i] == ' ' || line[i] == '\t':
			i++
		case line[i] == '"':
			j := i + 1
			for j < len(line) && line[j] != '"' {
				if line[j] == '\\' {
					j++
				}
				j++
			}
			if j >= len(line) {
				return nil, errors.New("unterminated quote")
			}
			s, err := strconv.Unquote(line[i : j+1])
			if err != nil {
				return nil, err
			}
			out = append(out, token{text: s, quoted: true})
			i = j + 1
		default:
			j := i
			for j < len(line) && line[j] != ' ' && line[j] != '\t' {
				j++
			}
			out = append(out, token{text: line[i:j]})
			i = j
		}
	}
	return out, nil
}

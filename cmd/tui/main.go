package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	client_api "github.com/Klaiveft/What2Watch/internal/client/api"
	client_session "github.com/Klaiveft/What2Watch/internal/client/session"
	http_common "github.com/Klaiveft/What2Watch/internal/delivery/http/common"
	http_room "github.com/Klaiveft/What2Watch/internal/delivery/http/room"
	http_voting "github.com/Klaiveft/What2Watch/internal/delivery/http/voting"
)

type console struct {
	api *client_api.Client
	in  *bufio.Scanner

	code     string
	stopRoom context.CancelFunc
	eof      bool
}

func (c *console) ask(prompt string) string {
	fmt.Print(prompt)
	if !c.in.Scan() {
		c.eof = true
		return ""
	}
	return strings.TrimSpace(c.in.Text())
}

// observe replaces the previous room observer with one for code.
func (c *console) observe(ctx context.Context, code string) {
	if c.stopRoom != nil {
		c.stopRoom()
	}
	c.code = code

	roomCtx, cancel := context.WithCancel(ctx)
	c.stopRoom = cancel

	session := client_session.New(c.api, code,
		client_session.WithOnRoute(func(s client_session.Screen) {
			fmt.Printf("\n[room %s] screen: %s\n", code, s)
		}),
		client_session.WithOnRoom(func(r http_room.LobbyResponseDTO) {
			names := make([]string, 0, len(r.Participants))
			for _, p := range r.Participants {
				names = append(names, p.DisplayName)
			}
			fmt.Printf("\n[room %s] %s, participants: %s\n", code, r.Status, strings.Join(names, ", "))
		}),
		client_session.WithOnError(func(err error) {
			fmt.Printf("\n[room %s] refresh failed: %v\n", code, err)
		}),
	)
	go func() {
		if err := session.Run(roomCtx); err != nil && !errors.Is(err, context.Canceled) {
			fmt.Printf("\n[room %s] stream ended: %v\n", code, err)
		}
	}()
}

func (c *console) createRoom(ctx context.Context) error {
	code, err := c.api.CreateRoom(ctx, c.ask("Your name: "))
	if err != nil {
		return err
	}
	fmt.Printf("Room created! Code: %s\n", code)
	c.observe(ctx, code)
	return nil
}

func (c *console) joinRoom(ctx context.Context) error {
	code := c.ask("Room code: ")
	resp, err := c.api.Join(ctx, code, c.ask("Your name: "))
	if err != nil {
		return err
	}
	if resp.AlreadyJoined {
		fmt.Println("You are already in this room, name updated")
	}
	c.observe(ctx, resp.RoomCode)
	return nil
}

func (c *console) search(ctx context.Context) error {
	hits, err := c.api.Search(ctx, c.ask("Title: "))
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		fmt.Println("Nothing found")
	}
	for _, h := range hits {
		fmt.Printf("  [%d] %s (%s)\n", h.TMDBID, h.Title, h.ReleaseDate)
	}
	return nil
}

func (c *console) propose(ctx context.Context) error {
	id, err := strconv.ParseInt(c.ask("TMDB id: "), 10, 64)
	if err != nil {
		return fmt.Errorf("not a number: %w", err)
	}
	m, err := c.api.Propose(ctx, c.code, id)
	if err != nil {
		return err
	}
	fmt.Printf("Proposed %s\n", m.Title)
	return nil
}

func (c *console) proposals(ctx context.Context) error {
	movies, err := c.api.ProposedMovies(ctx, c.code)
	if err != nil {
		return err
	}
	for _, m := range movies {
		fmt.Printf("  %s, proposed by %s\n", describe(m.MovieDTO), strings.Join(m.ProposedBy, ", "))
	}
	return nil
}

func (c *console) vote(ctx context.Context) error {
	ballot, err := c.api.Ballot(ctx, c.code)
	if err != nil {
		return err
	}
	if ballot.MyVotingDone {
		fmt.Printf("You are done. Room progress: %d%%\n", ballot.Progress.Percent)
		return nil
	}

	deck := client_session.NewDeck(c.api, c.code, ballot.Movies,
		client_session.WithVoteError(func(m http_common.MovieDTO, err error) {
			fmt.Printf("\nvote on %s failed: %v\n", m.Title, err)
		}),
		client_session.WithComplete(func(http_voting.CompletionDTO) {
			fmt.Println("\nEveryone voted!")
		}),
	)
	for {
		m, ok := deck.Current()
		if !ok {
			break
		}
		fmt.Printf("\n%s\n  %s\n", describe(m), m.Overview)
		switch strings.ToLower(c.ask("Watch it? [y/n/q]: ")) {
		case "y":
			deck.Decide(ctx, true)
		case "n":
			deck.Decide(ctx, false)
		case "q":
			deck.Wait()
			return nil
		}
	}
	deck.Wait()
	fmt.Println("Your votes are in. Waiting for the others...")
	return nil
}

func (c *console) finish(ctx context.Context) error {
	completion, err := c.api.CheckCompletion(ctx, c.code, true)
	if err != nil {
		return err
	}
	fmt.Printf("Complete: %v (%d/%d votes)\n", completion.Complete, completion.Progress.Cast, completion.Progress.Expected)
	return nil
}

func (c *console) results(ctx context.Context) error {
	results, err := c.api.Results(ctx, c.code)
	if err != nil {
		return err
	}
	if results.WinnerMovieID == nil {
		fmt.Println("No winner, nothing was proposed")
	}
	for i, m := range results.Movies {
		mark := ""
		if m.IsWinner {
			mark = " <- tonight"
		}
		fmt.Printf("%d. %s: %d/%d yes, %d%% match%s\n", i+1, describe(m.MovieDTO), m.YesCount, m.TotalVotes, m.MatchRate, mark)
	}
	return nil
}

func describe(m http_common.MovieDTO) string {
	if m.ReleaseYear != nil {
		return fmt.Sprintf("%s (%d)", m.Title, *m.ReleaseYear)
	}
	return m.Title
}

func main() {
	addr := flag.String("addr", "http://localhost:8080", "What2Watch server address")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &console{
		api: client_api.New(*addr),
		in:  bufio.NewScanner(os.Stdin),
	}
	if _, err := c.api.SignIn(ctx); err != nil {
		log.Fatalf("sign in: %v", err)
	}

	actions := map[string]func(context.Context) error{
		"1": c.createRoom,
		"2": c.joinRoom,
		"3": c.search,
		"4": c.propose,
		"5": c.proposals,
		"6": func(ctx context.Context) error { return c.api.StartVoting(ctx, c.code) },
		"7": c.vote,
		"8": c.finish,
		"9": c.results,
	}

	for ctx.Err() == nil {
		fmt.Println("\n=== What2Watch ===")
		if c.code != "" {
			fmt.Printf("Room %s\n", c.code)
		}
		fmt.Println("1. Create room")
		fmt.Println("2. Join room")
		fmt.Println("3. Search movies")
		fmt.Println("4. Propose movie")
		fmt.Println("5. Show proposals")
		fmt.Println("6. Start voting (host)")
		fmt.Println("7. Vote")
		fmt.Println("8. Finish voting now (host)")
		fmt.Println("9. Results")
		fmt.Println("0. Exit")

		choice := c.ask("Choose: ")
		if choice == "0" || c.eof {
			break
		}
		action, ok := actions[choice]
		if !ok {
			continue
		}
		if err := action(ctx); err != nil {
			var apiErr *client_api.Error
			if errors.As(err, &apiErr) && apiErr.Redirect != "" {
				fmt.Printf("Error: %s (go to %s)\n", apiErr.Message, apiErr.Redirect)
				continue
			}
			fmt.Printf("Error: %v\n", err)
		}
	}

	if c.stopRoom != nil {
		c.stopRoom()
	}
}

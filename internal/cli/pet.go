package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wfunc/pet-game/internal/database"
	"github.com/wfunc/pet-game/internal/service"
)

// NewPetCommand 宠物子命令
func NewPetCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pet",
		Short: "宠物管理",
	}
	cmd.AddCommand(newPetInitCommand(opts))
	cmd.AddCommand(newPetShowCommand(opts))
	return cmd
}

func newPetInitCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init <owner> <pet-id>",
		Short: "为身份创建宠物",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withServices(func(s *service.Services) error {
				view, err := s.Pet.InitializePet(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				return opts.print(cmd.OutOrStdout(), view, func(w io.Writer) {
					fmt.Fprintf(w, "已创建宠物 %s（主人 %s）\n", view.PetID, view.Owner)
					printState(w, view)
				})
			})
		},
	}
}

func newPetShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <pet-id>",
		Short: "查看宠物当前状态（不落库）",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withServices(func(s *service.Services) error {
				view, err := s.Pet.GetPet(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return opts.print(cmd.OutOrStdout(), view, func(w io.Writer) {
					fmt.Fprintf(w, "宠物 %s（主人 %s，未结算周期 %d）\n", view.PetID, view.Owner, view.Intervals)
					printState(w, view)
				})
			})
		},
	}
}

func (o *RootOptions) withServices(fn func(*service.Services) error) error {
	db, err := o.openDB()
	if err != nil {
		return err
	}
	defer database.Close(db)

	services, err := o.services(db)
	if err != nil {
		return err
	}
	return fn(services)
}

func printState(w io.Writer, view *service.PetView) {
	s := view.State
	fmt.Fprintf(w, "  饥饿 %3d  力量 %3d  快乐 %3d  能量 %3d\n", s.Hunger, s.Strength, s.Happiness, s.Energy)
}

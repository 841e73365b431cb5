package cmd

import (
	"errors"
	"fmt"
	"log"

	"github.com/anoixa/tierbed/config"
	"github.com/anoixa/tierbed/database"
	"github.com/anoixa/tierbed/database/models"
	"github.com/anoixa/tierbed/database/repo/accounts"
	tiersrepo "github.com/anoixa/tierbed/database/repo/tiers"
	"github.com/anoixa/tierbed/internal/apperrors"
	"github.com/spf13/cobra"
)

// bootstrapCmd represents the bootstrap command
var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Seed default tiers, sizes and the admin user",
	Run: func(cmd *cobra.Command, args []string) {
		config.InitConfig()
		cfg := config.Get()

		db, err := database.Open(cfg)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to auto migrate database: %v", err)
		}

		if err := SeedDefaults(accounts.NewRepository(db), tiersrepo.NewRepository(db)); err != nil {
			log.Fatalf("Failed to seed defaults: %v", err)
		}
		log.Println("[Bootstrap] Seed completed")
	},
}

func init() {
	rootCmd.AddCommand(bootstrapCmd)
}

// 默认层级及各自的缩略图高度
var defaultTiers = []struct {
	name               string
	allowsOriginalSize bool
	allowsExpiringLink bool
	heights            []int
}{
	{"Basic", false, false, []int{200}},
	{"Premium", true, false, []int{200, 400}},
	{"Enterprise", true, true, []int{200, 400}},
}

// SeedDefaults 幂等地创建默认层级、尺寸策略和管理员账号
// 已存在的对象原样保留，重复执行不报错
func SeedDefaults(accountsRepo *accounts.Repository, tiersRepo *tiersrepo.Repository) error {
	for _, def := range defaultTiers {
		tier, err := tiersRepo.GetTierByName(def.name)
		if errors.Is(err, apperrors.ErrNotFound) {
			tier, err = tiersRepo.CreateTier(def.name, true, def.allowsOriginalSize, def.allowsExpiringLink)
			if err != nil {
				return fmt.Errorf("failed to create tier %q: %w", def.name, err)
			}
			log.Printf("[Bootstrap] Created tier %q", def.name)
		} else if err != nil {
			return fmt.Errorf("failed to look up tier %q: %w", def.name, err)
		}

		if err := seedSizes(tiersRepo, tier, def.heights); err != nil {
			return err
		}
	}

	password, err := accountsRepo.CreateDefaultAdminUser()
	if err != nil {
		return err
	}
	if password != "" {
		log.Printf("[Bootstrap] Default admin password: %s", password)
	}
	return nil
}

func seedSizes(tiersRepo *tiersrepo.Repository, tier *models.Tier, heights []int) error {
	for _, height := range heights {
		if _, err := tiersRepo.SizeForTierAndHeight(tier.ID, height); err == nil {
			continue
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("failed to check %dpx size for tier %q: %w", height, tier.Name, err)
		}
		if _, err := tiersRepo.AddThumbnailSize(tier.ID, height); err != nil {
			return fmt.Errorf("failed to add %dpx size to tier %q: %w", height, tier.Name, err)
		}
		log.Printf("[Bootstrap] Added %dpx thumbnail size to tier %q", height, tier.Name)
	}
	return nil
}

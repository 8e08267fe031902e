package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/tokensmith/internal/config"
	jwtx "github.com/dropDatabas3/tokensmith/internal/jwt"
	"github.com/dropDatabas3/tokensmith/internal/observability/logger"
	"github.com/dropDatabas3/tokensmith/internal/security/secretbox"
	"github.com/dropDatabas3/tokensmith/internal/store/pg"
)

func main() {
	var (
		envFile    = envOr("TOKENSMITH_ENV_FILE", ".env")
		configPath = envOr("TOKENSMITH_CONFIG", "")
	)

	root := &cobra.Command{
		Use:   "keys",
		Short: "Administración de claves de firma (directo contra la base)",
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", envFile, "ruta a .env (opcional)")
	root.PersistentFlags().StringVar(&configPath, "config", configPath, "ruta a config.yaml")

	// openManager carga config y abre postgres; las operaciones de claves
	// solo tienen sentido contra almacenamiento persistente.
	openManager := func(ctx context.Context) (*jwtx.Manager, *pg.Store, *config.Config, error) {
		if envFile != "" {
			_ = godotenv.Load(envFile)
		}
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, nil, nil, err
		}
		logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, ServiceName: "keys"})
		if cfg.Storage.Driver != "postgres" {
			return nil, nil, nil, fmt.Errorf("keys requiere storage.driver=postgres (actual: %q)", cfg.Storage.Driver)
		}
		store, err := pg.Open(ctx, cfg.Storage.DSN, int32(cfg.Storage.MaxConns))
		if err != nil {
			return nil, nil, nil, err
		}
		box, err := secretbox.New(cfg.Secrets.MasterKey)
		if err != nil {
			store.Close()
			return nil, nil, nil, err
		}
		return jwtx.NewManager(store.Keys(), box), store, cfg, nil
	}

	var genAlg string
	var genTTL time.Duration
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generar una clave de firma nueva (queda activa)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			mgr, store, cfg, err := openManager(ctx)
			if err != nil {
				return err
			}
			defer store.Close()
			alg := genAlg
			if alg == "" {
				alg = cfg.JWT.Algorithm
			}
			ttl := genTTL
			if ttl <= 0 {
				ttl = cfg.KeyTTL()
			}
			key, err := mgr.Generate(ctx, alg, ttl)
			if err != nil {
				return err
			}
			fmt.Printf("kid=%s alg=%s expires=%s\n", key.KID, key.Algorithm, key.ExpiresAt.Format(time.RFC3339))
			return nil
		},
	}
	generateCmd.Flags().StringVar(&genAlg, "alg", "", "Algoritmo: RS256|RS384|RS512|ES256|ES384|ES512 (default: config)")
	generateCmd.Flags().DurationVar(&genTTL, "ttl", 0, "Vida total de la clave (default: config)")

	var rotAlg string
	var rotTTL time.Duration
	rotateCmd := &cobra.Command{
		Use:   "rotate",
		Short: "Generar clave nueva y desactivar las activas anteriores",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			mgr, store, cfg, err := openManager(ctx)
			if err != nil {
				return err
			}
			defer store.Close()
			alg := rotAlg
			if alg == "" {
				alg = cfg.JWT.Algorithm
			}
			ttl := rotTTL
			if ttl <= 0 {
				ttl = cfg.KeyTTL()
			}
			key, err := mgr.Rotate(ctx, alg, ttl)
			if err != nil {
				return err
			}
			fmt.Printf("rotated: nueva kid=%s alg=%s\n", key.KID, key.Algorithm)
			return nil
		},
	}
	rotateCmd.Flags().StringVar(&rotAlg, "alg", "", "Algoritmo de la clave nueva (default: config)")
	rotateCmd.Flags().DurationVar(&rotTTL, "ttl", 0, "Vida total de la clave nueva (default: config)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Listar claves activas (la primera es la que firma)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			mgr, store, _, err := openManager(ctx)
			if err != nil {
				return err
			}
			defer store.Close()
			keys, err := mgr.Repo.FindActive(ctx)
			if err != nil {
				return err
			}
			if len(keys) == 0 {
				fmt.Println("sin claves activas")
				return nil
			}
			for i, k := range keys {
				role := "verify"
				if i == 0 {
					role = "sign"
				}
				fmt.Printf("kid=%s alg=%s role=%s created=%s expires=%s\n",
					k.KID, k.Algorithm, role,
					k.CreatedAt.Format(time.RFC3339), k.ExpiresAt.Format(time.RFC3339))
			}
			return nil
		},
	}

	genMasterCmd := &cobra.Command{
		Use:   "gen-master-key",
		Short: "Generar una master key nueva (base64, 32 bytes) para SECRETBOX_MASTER_KEY",
		RunE: func(cmd *cobra.Command, args []string) error {
			key := make([]byte, 32)
			if _, err := rand.Read(key); err != nil {
				return err
			}
			fmt.Println(base64.StdEncoding.EncodeToString(key))
			return nil
		},
	}

	root.AddCommand(generateCmd)
	root.AddCommand(rotateCmd)
	root.AddCommand(listCmd)
	root.AddCommand(genMasterCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

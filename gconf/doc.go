/*
Package gconf implements a configuration store intended to be used as a global,
in-database configuration.

Each extension keeps a single configuration entity under the "_c:<package>"
key. The entity is loaded from the genesis file and can later be patched by
its owner using the UpdateConfigurationHandler.
*/
package gconf
